// Package sexagenary defines the closed enumerations of the sixty-term cycle:
// the ten heavenly stems, the twelve earthly branches, the pillars they form
// and the zodiac animals attached to the branches.
package sexagenary

import (
	"fmt"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Stems
// -----------------------------------------------------------------------------

// Stem is one of the ten heavenly stems, ordered 0 (甲) to 9 (癸).
type Stem uint8

const (
	StemJia Stem = iota
	StemYi
	StemBing
	StemDing
	StemWu
	StemJi
	StemGeng
	StemXin
	StemRen
	StemGui
)

// StemCount is the length of the stem cycle.
const StemCount = 10

var stemHanja = [StemCount]rune{'甲', '乙', '丙', '丁', '戊', '己', '庚', '辛', '壬', '癸'}
var stemHangul = [StemCount]rune{'갑', '을', '병', '정', '무', '기', '경', '신', '임', '계'}

// Valid reports whether s is one of the ten stems.
func (s Stem) Valid() bool { return s < StemCount }

// Hanja returns the stem in Chinese characters.
func (s Stem) Hanja() string {
	if !s.Valid() {
		return ""
	}
	return string(stemHanja[s])
}

// Hangul returns the stem in Korean script.
func (s Stem) Hangul() string {
	if !s.Valid() {
		return ""
	}
	return string(stemHangul[s])
}

func (s Stem) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stem(%d)", uint8(s))
	}
	return s.Hanja()
}

// Add returns the stem n positions further in the cycle.
func (s Stem) Add(n int) Stem {
	return Stem(mod(int(s)+n, StemCount))
}

// ParseStem resolves a single character in either script.
func ParseStem(r rune) (Stem, bool) {
	for i := range stemHanja {
		if stemHanja[i] == r || stemHangul[i] == r {
			return Stem(i), true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Branches
// -----------------------------------------------------------------------------

// Branch is one of the twelve earthly branches, ordered 0 (子) to 11 (亥).
type Branch uint8

const (
	BranchZi Branch = iota
	BranchChou
	BranchYin
	BranchMao
	BranchChen
	BranchSi
	BranchWu
	BranchWei
	BranchShen
	BranchYou
	BranchXu
	BranchHai
)

// BranchCount is the length of the branch cycle.
const BranchCount = 12

var branchHanja = [BranchCount]rune{'子', '丑', '寅', '卯', '辰', '巳', '午', '未', '申', '酉', '戌', '亥'}
var branchHangul = [BranchCount]rune{'자', '축', '인', '묘', '진', '사', '오', '미', '신', '유', '술', '해'}

// Valid reports whether b is one of the twelve branches.
func (b Branch) Valid() bool { return b < BranchCount }

// Hanja returns the branch in Chinese characters.
func (b Branch) Hanja() string {
	if !b.Valid() {
		return ""
	}
	return string(branchHanja[b])
}

// Hangul returns the branch in Korean script.
func (b Branch) Hangul() string {
	if !b.Valid() {
		return ""
	}
	return string(branchHangul[b])
}

func (b Branch) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Branch(%d)", uint8(b))
	}
	return b.Hanja()
}

// Zodiac returns the animal attached to the branch.
func (b Branch) Zodiac() Zodiac {
	return Zodiac(b)
}

// ParseBranch resolves a single character in either script.
// '신' is ambiguous (辛 / 申); as a branch it always means 申.
func ParseBranch(r rune) (Branch, bool) {
	for i := range branchHanja {
		if branchHanja[i] == r || branchHangul[i] == r {
			return Branch(i), true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Pillars
// -----------------------------------------------------------------------------

// Pillar is a stem paired with a branch.
type Pillar struct {
	Stem   Stem
	Branch Branch
}

// NewPillar pairs a stem and a branch.
func NewPillar(s Stem, b Branch) Pillar {
	return Pillar{Stem: s, Branch: b}
}

// ParsePillar decodes a two-character pillar written in hanja or hangul.
func ParsePillar(s string) (Pillar, bool) {
	if utf8.RuneCountInString(s) != 2 {
		return Pillar{}, false
	}
	first, size := utf8.DecodeRuneInString(s)
	second, _ := utf8.DecodeRuneInString(s[size:])

	stem, ok := ParseStem(first)
	if !ok {
		return Pillar{}, false
	}
	branch, ok := ParseBranch(second)
	if !ok {
		return Pillar{}, false
	}
	return Pillar{Stem: stem, Branch: branch}, true
}

// Valid reports whether both halves are recognized values.
func (p Pillar) Valid() bool { return p.Stem.Valid() && p.Branch.Valid() }

// Hanja renders the pillar as two Chinese characters.
func (p Pillar) Hanja() string { return p.Stem.Hanja() + p.Branch.Hanja() }

// Hangul renders the pillar as two Korean syllables.
func (p Pillar) Hangul() string { return p.Stem.Hangul() + p.Branch.Hangul() }

func (p Pillar) String() string { return p.Hanja() }

// MarshalText encodes the pillar in hanja.
func (p Pillar) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pillar %d/%d", p.Stem, p.Branch)
	}
	return []byte(p.Hanja()), nil
}

// UnmarshalText accepts either script.
func (p *Pillar) UnmarshalText(text []byte) error {
	parsed, ok := ParsePillar(string(text))
	if !ok {
		return fmt.Errorf("invalid pillar %q", text)
	}
	*p = parsed
	return nil
}

// -----------------------------------------------------------------------------
// Zodiac
// -----------------------------------------------------------------------------

// Zodiac is the animal sign derived from a branch.
type Zodiac uint8

var zodiacNames = [BranchCount]string{
	"rat", "ox", "tiger", "rabbit", "dragon", "snake",
	"horse", "goat", "monkey", "rooster", "dog", "pig",
}

// Branch returns the branch the sign belongs to.
func (z Zodiac) Branch() Branch { return Branch(z) }

// String returns the stable English key of the sign ("rat", "ox", ...).
func (z Zodiac) String() string {
	if int(z) >= len(zodiacNames) {
		return ""
	}
	return zodiacNames[z]
}

// MarshalText encodes the sign by its English key.
func (z Zodiac) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
