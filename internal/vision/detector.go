// File: internal/vision/detector.go
package vision

import "go.uber.org/zap"

// ChangeDetector decides whether the UI visibly changed between consecutive
// steps by comparing perceptual fingerprints of after-action screenshots.
// Exact 64-bit equality is the unchanged criterion; dHash already absorbs
// sub-pixel rendering noise.
type ChangeDetector struct {
	logger   *zap.Logger
	lastHash uint64
	hasLast  bool
	streak   int
}

// NewChangeDetector builds a detector with no prior fingerprint.
func NewChangeDetector(logger *zap.Logger) *ChangeDetector {
	return &ChangeDetector{logger: logger.Named("change_detector")}
}

// Observe hashes the screenshot and compares it to the previous step's hash.
// The first observation is never "unchanged". On decode failure the step is
// treated as changed so the loop does not penalize targets spuriously.
func (d *ChangeDetector) Observe(screenshot []byte) (unchanged bool) {
	hash, err := DHash(screenshot)
	if err != nil {
		d.logger.Warn("UI change detection failed; assuming changed.", zap.Error(err))
		d.hasLast = false
		d.streak = 0
		return false
	}

	unchanged = d.hasLast && hash == d.lastHash
	d.lastHash = hash
	d.hasLast = true

	if unchanged {
		d.streak++
		d.logger.Debug("UI unchanged.", zap.Uint64("hash", hash), zap.Int("streak", d.streak))
	} else {
		d.streak = 0
	}
	return unchanged
}

// LastHash returns the most recent fingerprint and whether one exists.
func (d *ChangeDetector) LastHash() (uint64, bool) { return d.lastHash, d.hasLast }

// Streak returns the number of consecutive unchanged observations.
func (d *ChangeDetector) Streak() int { return d.streak }
