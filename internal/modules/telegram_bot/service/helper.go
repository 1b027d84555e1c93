package service

import (
	"strconv"
	"strings"

	"scan_bot/internal/helper"
)

const (
	defaultInterval = "60m"
	defaultPeriod   = "60d"
)

// tickerArgs parses "TICKER [interval] [period]".
func tickerArgs(args []string) (raw, interval, period string, ok bool) {
	if len(args) == 0 {
		return "", "", "", false
	}
	raw = strings.ToUpper(strings.TrimSpace(args[0]))
	interval, period = rangeArgs(args[1:])
	return raw, interval, period, raw != ""
}

// rangeArgs parses "[interval] [period]" with the hourly defaults.
func rangeArgs(args []string) (interval, period string) {
	interval, period = defaultInterval, defaultPeriod
	if len(args) > 0 {
		interval = helper.NormTF(args[0])
	}
	if len(args) > 1 {
		period = strings.ToLower(strings.TrimSpace(args[1]))
	}
	return interval, period
}

// limitArg reads an optional positive int; anything else means no limit.
func limitArg(args []string, i int) int {
	if len(args) <= i {
		return 0
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
