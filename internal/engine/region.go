package engine

import (
	"fmt"
	"strings"
)

// Region is a birth place used for the true-solar-time correction.
type Region uint8

// Supported regions. Offsets are minutes between local mean solar time and the
// 135°E meridian of Korean Standard Time.
const (
	RegionUnspecified Region = iota
	RegionSeoul
	RegionIncheon
	RegionSuwon
	RegionChuncheon
	RegionGangneung
	RegionCheongju
	RegionDaejeon
	RegionSejong
	RegionJeonju
	RegionGwangju
	RegionMokpo
	RegionDaegu
	RegionPohang
	RegionUlsan
	RegionBusan
	RegionJeju
	regionCount
)

var regions = [regionCount]struct {
	key    string
	name   string
	offset int
}{
	RegionUnspecified: {"unspecified", "선택 안 함", 0},
	RegionSeoul:       {"seoul", "서울", -32},
	RegionIncheon:     {"incheon", "인천", -33},
	RegionSuwon:       {"suwon", "수원", -32},
	RegionChuncheon:   {"chuncheon", "춘천", -29},
	RegionGangneung:   {"gangneung", "강릉", -24},
	RegionCheongju:    {"cheongju", "청주", -30},
	RegionDaejeon:     {"daejeon", "대전", -30},
	RegionSejong:      {"sejong", "세종", -31},
	RegionJeonju:      {"jeonju", "전주", -31},
	RegionGwangju:     {"gwangju", "광주", -33},
	RegionMokpo:       {"mokpo", "목포", -34},
	RegionDaegu:       {"daegu", "대구", -26},
	RegionPohang:      {"pohang", "포항", -23},
	RegionUlsan:       {"ulsan", "울산", -23},
	RegionBusan:       {"busan", "부산", -24},
	RegionJeju:        {"jeju", "제주", -34},
}

// Regions returns every region in display order.
func Regions() []Region {
	out := make([]Region, regionCount)
	for i := range out {
		out[i] = Region(i)
	}
	return out
}

// Valid reports whether r is a known region.
func (r Region) Valid() bool { return r < regionCount }

// Key returns the stable English identifier ("seoul").
func (r Region) Key() string {
	if !r.Valid() {
		return ""
	}
	return regions[r].key
}

// Name returns the Korean display name.
func (r Region) Name() string {
	if !r.Valid() {
		return ""
	}
	return regions[r].name
}

// Offset returns the correction in minutes. Unknown regions count as unspecified.
func (r Region) Offset() int {
	if !r.Valid() {
		return 0
	}
	return regions[r].offset
}

func (r Region) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Region(%d)", uint8(r))
	}
	return regions[r].key
}

// MarshalText encodes the region by key.
func (r Region) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid region %d", uint8(r))
	}
	return []byte(r.Key()), nil
}

// UnmarshalText accepts a key or a Korean name.
func (r *Region) UnmarshalText(text []byte) error {
	parsed, ok := ParseRegion(string(text))
	if !ok {
		return fmt.Errorf("invalid region %q", text)
	}
	*r = parsed
	return nil
}

// ParseRegion looks a region up by English key or Korean name.
// The empty string is RegionUnspecified.
func ParseRegion(s string) (Region, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RegionUnspecified, true
	}
	lower := strings.ToLower(s)
	for i, def := range regions {
		if def.key == lower || def.name == s {
			return Region(i), true
		}
	}
	return RegionUnspecified, false
}

// RegionOrUnspecified is ParseRegion with unknown labels mapped to RegionUnspecified.
func RegionOrUnspecified(s string) Region {
	r, _ := ParseRegion(s)
	return r
}
