package app

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNumber indicates that the input could not be parsed as a number.
	ErrInvalidNumber = errors.New("not a number")
	// ErrInvalidWeight indicates a non-positive weight.
	ErrInvalidWeight = errors.New("weight must be > 0")
	// ErrInvalidFatPct indicates a fat percentage outside (0, 100].
	ErrInvalidFatPct = errors.New("fat % must be within (0, 100]")
	// ErrInvalidHeight indicates a height outside [50, 250] cm.
	ErrInvalidHeight = errors.New("height must be within [50, 250] cm")
)

const (
	minHeightCm = 50
	maxHeightCm = 250
)

// ParseFloat parses user input, accepting a decimal comma ("82,5").
func ParseFloat(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if cleaned == "" {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// ParseWeight parses a positive weight in kg.
func ParseWeight(s string) (float64, error) {
	v, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	if err := validateWeight(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseFatPct parses a body-fat percentage in (0, 100].
func ParseFatPct(s string) (float64, error) {
	v, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	if err := validateFatPct(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseHeight parses a height in cm within [50, 250].
func ParseHeight(s string) (float64, error) {
	v, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	if err := validateHeight(v); err != nil {
		return 0, err
	}
	return v, nil
}

func validateWeight(v float64) error {
	if v <= 0 {
		return ErrInvalidWeight
	}
	return nil
}

func validateFatPct(v *float64) error {
	if v != nil && (*v <= 0 || *v > 100) {
		return ErrInvalidFatPct
	}
	return nil
}

func validateHeight(v float64) error {
	if v < minHeightCm || v > maxHeightCm {
		return ErrInvalidHeight
	}
	return nil
}
