package services

import (
	"encoding/json"
	"fmt"
	"os/exec"
)

// Fingerprinter computes an acoustic fingerprint and duration for an audio
// file. Available reports whether the underlying capability exists; callers
// branch on it instead of interpreting errors.
type Fingerprinter interface {
	Available() bool
	Fingerprint(path string) (fingerprint string, duration float64, err error)
}

// fpcalcFingerprinter shells out to the Chromaprint fpcalc binary.
type fpcalcFingerprinter struct {
	binary string // empty when fpcalc was not found on PATH
}

// NewFingerprinter probes for fpcalc once and returns a fingerprinter bound
// to whatever was found. The probe result does not change over the process
// lifetime.
func NewFingerprinter() Fingerprinter {
	binary, err := exec.LookPath("fpcalc")
	if err != nil {
		return &fpcalcFingerprinter{}
	}
	return &fpcalcFingerprinter{binary: binary}
}

// Available reports whether fpcalc was found at startup.
func (f *fpcalcFingerprinter) Available() bool {
	return f.binary != ""
}

// fpcalcOutput mirrors the JSON emitted by "fpcalc -json".
type fpcalcOutput struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

// Fingerprint runs fpcalc against the file and parses its JSON output.
func (f *fpcalcFingerprinter) Fingerprint(path string) (string, float64, error) {
	if f.binary == "" {
		return "", 0, fmt.Errorf("fpcalc is not installed")
	}

	out, err := exec.Command(f.binary, "-json", path).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", 0, fmt.Errorf("fpcalc failed: %s", string(exitErr.Stderr))
		}
		return "", 0, fmt.Errorf("fpcalc failed: %w", err)
	}

	var result fpcalcOutput
	if err := json.Unmarshal(out, &result); err != nil {
		return "", 0, fmt.Errorf("failed to parse fpcalc output: %w", err)
	}
	if result.Fingerprint == "" {
		return "", 0, fmt.Errorf("fpcalc returned no fingerprint")
	}

	return result.Fingerprint, result.Duration, nil
}
