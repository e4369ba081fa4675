package emotion

import (
	"errors"
	"fmt"
	"strings"
)

// Polarity is the coarse sentiment class derived from a label.
type Polarity string

const (
	PolarityPositive Polarity = "긍정"
	PolarityNegative Polarity = "부정"
	PolarityNeutral  Polarity = "중립"
)

// Polarities lists the polarity classes in display order.
var Polarities = []Polarity{PolarityPositive, PolarityNegative, PolarityNeutral}

const (
	// SentinelLabel marks texts with no detectable emotion.
	SentinelLabel = "없음"
	// AlternateSentinel replaces SentinelLabel when ReplaceNone is enabled.
	AlternateSentinel = "무감정"
	// ErrorLabel marks rows whose inference failed during a batch run.
	ErrorLabel = "오류"
)

// Derived column names written next to the label score columns.
const (
	ColumnTopLabel  = "주요_감정"
	ColumnIntensity = "감정_강도"
	ColumnPolarity  = "감정_분류"
)

var koteLabels = []string{
	"불평/불만", "환영/호의", "감동/감탄", "지긋지긋", "고마움", "슬픔", "화남/분노", "존경",
	"기대감", "우쭐댐/무시함", "안타까움/실망", "비장함", "의심/불신", "뿌듯함", "편안/쾌적",
	"신기함/관심", "아껴주는", "부끄러움", "공포/무서움", "절망", "한심함", "역겨움/징그러움",
	"짜증", "어이없음", "없음", "패배/자기혐오", "귀찮음", "힘듦/지침", "즐거움/신남", "깨달음",
	"죄책감", "증오/혐오", "흐뭇함(귀여움/예쁨)", "당황/난처", "경악", "부담/안_내킴", "서러움",
	"재미없음", "불쌍함/연민", "놀람", "행복", "불안/걱정", "기쁨", "안심/신뢰",
}

var kotePolarity = map[string]Polarity{
	"불평/불만": PolarityNegative, "당황/난처": PolarityNegative, "짜증": PolarityNegative,
	"슬픔": PolarityNegative, "절망": PolarityNegative, "부끄러움": PolarityNegative,
	"재미없음": PolarityNegative, "안타까움/실망": PolarityNegative, "역겨움/징그러움": PolarityNegative,
	"경악": PolarityNegative, "부담/안_내킴": PolarityNegative, "공포/무서움": PolarityNegative,
	"증오/혐오": PolarityNegative, "죄책감": PolarityNegative, "불안/걱정": PolarityNegative,
	"의심/불신": PolarityNegative, "화남/분노": PolarityNegative, "패배/자기혐오": PolarityNegative,
	"귀찮음": PolarityNegative, "서러움": PolarityNegative, "지긋지긋": PolarityNegative,
	"어이없음": PolarityNegative, "불쌍함/연민": PolarityNegative, "한심함": PolarityNegative,
	"힘듦/지침": PolarityNegative,

	"감동/감탄": PolarityPositive, "행복": PolarityPositive, "기쁨": PolarityPositive,
	"고마움": PolarityPositive, "즐거움/신남": PolarityPositive, "아껴주는": PolarityPositive,
	"기대감": PolarityPositive, "편안/쾌적": PolarityPositive, "환영/호의": PolarityPositive,
	"신기함/관심": PolarityPositive, "안심/신뢰": PolarityPositive, "존경": PolarityPositive,
	"흐뭇함(귀여움/예쁨)": PolarityPositive, "뿌듯함": PolarityPositive,

	"우쭐댐/무시함": PolarityNeutral, "놀람": PolarityNeutral, "깨달음": PolarityNeutral,
	"비장함": PolarityNeutral, "없음": PolarityNeutral,
}

// LabelSet is an immutable ordered list of labels with their polarity lookup.
type LabelSet struct {
	labels   []string
	index    map[string]int
	polarity map[string]Polarity
	sentinel string
}

// NewLabelSet validates the labels and builds a LabelSet. Labels missing from
// polarity are treated as neutral.
func NewLabelSet(labels []string, polarity map[string]Polarity, sentinel string) (LabelSet, error) {
	if len(labels) == 0 {
		return LabelSet{}, errors.New("label set is empty")
	}
	set := LabelSet{
		labels:   make([]string, len(labels)),
		index:    make(map[string]int, len(labels)),
		polarity: make(map[string]Polarity, len(polarity)),
		sentinel: sentinel,
	}
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			return LabelSet{}, fmt.Errorf("label %d is blank", i)
		}
		if _, dup := set.index[label]; dup {
			return LabelSet{}, fmt.Errorf("duplicate label %q", label)
		}
		set.labels[i] = label
		set.index[label] = i
	}
	if _, ok := set.index[sentinel]; !ok {
		return LabelSet{}, fmt.Errorf("sentinel %q is not a label", sentinel)
	}
	for label, p := range polarity {
		set.polarity[label] = p
	}
	return set, nil
}

// KOTELabels returns the 44-label KOTE schema.
func KOTELabels() LabelSet {
	set, err := NewLabelSet(koteLabels, kotePolarity, SentinelLabel)
	if err != nil {
		panic(err)
	}
	return set
}

// Labels returns a copy of the labels in order.
func (s LabelSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len reports the number of labels.
func (s LabelSet) Len() int { return len(s.labels) }

// Sentinel returns the no-emotion label.
func (s LabelSet) Sentinel() string { return s.sentinel }

// Contains reports whether label belongs to the set.
func (s LabelSet) Contains(label string) bool {
	_, ok := s.index[label]
	return ok
}

// IndexOf returns the position of label or -1.
func (s LabelSet) IndexOf(label string) int {
	if i, ok := s.index[label]; ok {
		return i
	}
	return -1
}

// Polarity maps a label to its polarity. The alternate sentinel and the error
// marker are neutral, as is any unknown label.
func (s LabelSet) Polarity(label string) Polarity {
	if p, ok := s.polarity[label]; ok {
		return p
	}
	return PolarityNeutral
}

// DisplayName returns label as it appears in output, applying the sentinel rename.
func (s LabelSet) DisplayName(label string, replaceNone bool) string {
	if replaceNone && label == s.sentinel {
		return AlternateSentinel
	}
	return label
}

// Display returns the labels as output columns, applying the sentinel rename.
func (s LabelSet) Display(replaceNone bool) []string {
	out := make([]string, len(s.labels))
	for i, label := range s.labels {
		out[i] = s.DisplayName(label, replaceNone)
	}
	return out
}
