package config

import (
	"fmt"
	"strconv"
	"strings"
)

// WhiteBalanceKind distinguishes the semantic containers a white balance
// setting can take.
type WhiteBalanceKind int

const (
	WhiteBalanceAuto WhiteBalanceKind = iota
	WhiteBalanceCamera
	WhiteBalanceDefault
	WhiteBalanceManual
)

// WhiteBalance is white_balance ∈ {"auto", "camera", "default"} ∪
// (non-negative × 4 multipliers). A 3-tuple (r,g,b) is broadened to
// (r,g,b,g) by duplicating the green channel.
type WhiteBalance struct {
	Kind           WhiteBalanceKind
	R, G1, B, G2   float64
}

func (w WhiteBalance) String() string {
	switch w.Kind {
	case WhiteBalanceAuto:
		return "auto"
	case WhiteBalanceCamera:
		return "camera"
	case WhiteBalanceDefault:
		return "default"
	default:
		return fmt.Sprintf("%g %g %g %g", w.R, w.G1, w.B, w.G2)
	}
}

// ParseWhiteBalance accepts any of several permissive forms: the keywords
// "auto"/"camera"/"default" (case-insensitive), or 3 or 4
// whitespace/comma-separated non-negative floats.
func ParseWhiteBalance(raw string) (WhiteBalance, error) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "auto":
		return WhiteBalance{Kind: WhiteBalanceAuto}, nil
	case "camera":
		return WhiteBalance{Kind: WhiteBalanceCamera}, nil
	case "default", "":
		return WhiteBalance{Kind: WhiteBalanceDefault}, nil
	}

	parts := splitNumeric(trimmed)
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return WhiteBalance{}, fmt.Errorf(
				"invalid white balance %q: not a keyword or numeric tuple", raw)
		}
		if v < 0 {
			return WhiteBalance{}, fmt.Errorf(
				"invalid white balance %q: multipliers must be non-negative", raw)
		}
		vals = append(vals, v)
	}

	switch len(vals) {
	case 3:
		return WhiteBalance{Kind: WhiteBalanceManual, R: vals[0], G1: vals[1], B: vals[2], G2: vals[1]}, nil
	case 4:
		return WhiteBalance{Kind: WhiteBalanceManual, R: vals[0], G1: vals[1], B: vals[2], G2: vals[3]}, nil
	default:
		return WhiteBalance{}, fmt.Errorf(
			"invalid white balance %q: expected a keyword or 3 or 4 multipliers", raw)
	}
}

func splitNumeric(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}

// ChromaticAberration is chromatic_aberration ∈ (non-negative × 2): red and
// blue channel correction factors.
type ChromaticAberration struct {
	R, B float64
}

// ParseChromaticAberration parses two non-negative floats.
func ParseChromaticAberration(raw string) (ChromaticAberration, error) {
	parts := splitNumeric(strings.TrimSpace(raw))
	if len(parts) != 2 {
		return ChromaticAberration{}, fmt.Errorf(
			"invalid chromatic aberration %q: expected exactly 2 values", raw)
	}
	vals := make([]float64, 2)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return ChromaticAberration{}, fmt.Errorf(
				"invalid chromatic aberration %q: values must be non-negative numbers", raw)
		}
		vals[i] = v
	}
	return ChromaticAberration{R: vals[0], B: vals[1]}, nil
}

// GroupOrdering is group_ordering ∈ {abc, natural, num}.
type GroupOrdering int

const (
	OrderNatural GroupOrdering = iota
	OrderABC
	OrderNum
)

func ParseGroupOrdering(raw string) (GroupOrdering, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "abc":
		return OrderABC, nil
	case "natural":
		return OrderNatural, nil
	case "num":
		return OrderNum, nil
	default:
		return 0, fmt.Errorf("invalid group_ordering %q: expected abc, natural, or num", raw)
	}
}

func (o GroupOrdering) String() string {
	switch o {
	case OrderABC:
		return "abc"
	case OrderNum:
		return "num"
	default:
		return "natural"
	}
}

// ThumbnailLocation is thumbnail_location ∈ {Root, Date, Group, Custom},
// plus aliases project→Root, other→Custom.
type ThumbnailLocation int

const (
	ThumbLocationRoot ThumbnailLocation = iota
	ThumbLocationDate
	ThumbLocationGroup
	ThumbLocationCustom
)

func ParseThumbnailLocation(raw string) (ThumbnailLocation, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "root", "project":
		return ThumbLocationRoot, nil
	case "date":
		return ThumbLocationDate, nil
	case "group":
		return ThumbLocationGroup, nil
	case "custom", "other":
		return ThumbLocationCustom, nil
	default:
		return 0, fmt.Errorf(
			"invalid thumbnail_location %q: expected root, date, group, or custom", raw)
	}
}

func (l ThumbnailLocation) String() string {
	switch l {
	case ThumbLocationRoot:
		return "root"
	case ThumbLocationDate:
		return "date"
	case ThumbLocationGroup:
		return "group"
	default:
		return "custom"
	}
}

// FlipRotate is the 8-variant flip/rotate enum; numeric aliases 90/180/270
// map to rotate-cw/half-rotation/rotate-ccw.
type FlipRotate int

const (
	FlipRotateNone FlipRotate = iota
	FlipRotateCW
	FlipRotateHalf
	FlipRotateCCW
	FlipHorizontal
	FlipVertical
	FlipHorizontalRotateCW
	FlipHorizontalRotateCCW
)

func ParseFlipRotate(raw string) (FlipRotate, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "":
		return FlipRotateNone, nil
	case "90", "rotate-cw", "cw":
		return FlipRotateCW, nil
	case "180", "half", "rotate-180":
		return FlipRotateHalf, nil
	case "270", "rotate-ccw", "ccw":
		return FlipRotateCCW, nil
	case "flip-horizontal", "hflip":
		return FlipHorizontal, nil
	case "flip-vertical", "vflip":
		return FlipVertical, nil
	case "flip-horizontal-rotate-cw":
		return FlipHorizontalRotateCW, nil
	case "flip-horizontal-rotate-ccw":
		return FlipHorizontalRotateCCW, nil
	default:
		return 0, fmt.Errorf("invalid flip_rotate %q", raw)
	}
}

// Sample is sample = null | "N" | "~N" where N >= 1, and "-1" disables
// sampling explicitly. A "~" prefix means randomize.
type Sample struct {
	Enabled bool
	Random  bool
	Size    int
}

// ParseSample parses the sample option: "-1" disables sampling, any
// "~"-prefixed value must be a positive integer ("~-1" is rejected
// explicitly), zero and negative values (other than the disabling -1) and
// non-integer values are rejected.
func ParseSample(raw string) (Sample, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return Sample{}, nil
	}

	random := strings.HasPrefix(trimmed, "~")
	numPart := strings.TrimPrefix(trimmed, "~")

	n, err := strconv.Atoi(numPart)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid sample %q: not an integer", raw)
	}

	if random {
		if n <= 0 {
			return Sample{}, fmt.Errorf(
				"invalid sample %q: randomized sample size must be positive", raw)
		}
		return Sample{Enabled: true, Random: true, Size: n}, nil
	}

	if n == -1 {
		return Sample{}, nil
	}
	if n <= 0 {
		return Sample{}, fmt.Errorf(
			"invalid sample %q: size must be positive, or exactly -1 to disable", raw)
	}
	return Sample{Enabled: true, Size: n}, nil
}
