package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// randomSeed draws a seed from the operating system's entropy source.
func randomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("reading random seed: %v", err))
	}
	return binary.LittleEndian.Uint64(b[:])
}

func parseSeed(s string) (uint64, error) {
	seed, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", s, err)
	}
	return seed, nil
}

// resolveSeed returns the configured seed, or a random one if none is set.
func resolveSeed() (uint64, error) {
	s := viper.GetString("seed")
	if s == "" {
		return randomSeed(), nil
	}
	return parseSeed(s)
}
