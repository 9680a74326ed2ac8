package video

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shinji-kodama/ved/internal/model"
)

// DefaultSplitSuffix separates the stem from the part counter.
const DefaultSplitSuffix = "_part_"

// PlanSplit divides a video of duration seconds into parts of partLen
// seconds. A trailing remainder of at least one second becomes its own
// part running to the end of the file; a shorter remainder is dropped
// and the last part stops at parts*partLen.
func PlanSplit(path string, duration, partLen float64, suffix string) ([]model.SplitPart, error) {
	if !(partLen > 0) {
		return nil, model.UsageError("part length must be greater than zero")
	}
	if !(duration > 0) {
		return nil, nil
	}

	ratio := duration / partLen
	whole := math.Trunc(ratio)
	leftover := math.Abs(ratio-whole) * partLen

	total := int(whole)
	var termination *string
	if leftover >= 1 {
		total = int(math.Ceil(ratio))
	}
	if total < 1 {
		total = 1
	}
	if leftover < 1 {
		s := FormatSeconds(float64(total) * partLen)
		termination = &s
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	parts := make([]model.SplitPart, 0, total)
	for i := range total {
		part := model.SplitPart{
			Start: FormatSeconds(partLen * float64(i)),
			Name:  fmt.Sprintf("%s_%s%d_of_%d%s", stem, suffix, i+1, total, ext),
		}
		if i+1 != total {
			s := FormatSeconds(partLen * float64(i+1))
			part.Stop = &s
		} else {
			part.Stop = termination
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// FormatSeconds renders seconds the way the split listing prints them:
// shortest round-trip form, always with a fractional part ("30.0").
func FormatSeconds(s float64) string {
	out := strconv.FormatFloat(s, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eEn") {
		out += ".0"
	}
	return out
}

// ClipName returns "<stem>_clip_<start>_<stop><ext>" with colons removed
// from the time stamps.
func ClipName(path string, start, stop model.Timestamp) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_clip_%s_%s%s", stem, start.Compact(), stop.Compact(), ext)
}

// ConvertedName returns "<stem>.<ext>".
func ConvertedName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + strings.TrimPrefix(ext, ".")
}
