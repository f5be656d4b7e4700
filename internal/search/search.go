// Package search builds the keyword text products are matched against, so a
// listing titled in Chinese can be found by its words, its full pinyin or its
// pinyin initials.
package search

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
	"github.com/mozillazg/go-pinyin"
)

// Indexer turns product text into a lowercase, space separated keyword string.
// A nil segmenter falls back to whitespace tokenisation.
type Indexer struct {
	mu  sync.RWMutex
	seg *gse.Segmenter
}

func NewIndexer(seg *gse.Segmenter) *Indexer {
	return &Indexer{seg: seg}
}

// LoadSegmenter loads the embedded gse dictionary, or dictFiles when given,
// and registers the marketplace vocabulary.
func LoadSegmenter(dictFiles ...string) (*gse.Segmenter, error) {
	seg := &gse.Segmenter{}
	if err := seg.LoadDict(dictFiles...); err != nil {
		return nil, fmt.Errorf("load segmenter dictionary: %w", err)
	}
	for _, word := range vocabulary {
		seg.AddToken(word, 1000, "n")
	}
	return seg, nil
}

// Words that should survive segmentation intact.
var vocabulary = []string{
	"全新", "九成新", "八成新", "七成新", "六成新",
	"二手", "闲置", "包邮", "自提",
	"笔记本电脑", "平板电脑", "游戏机", "单反相机", "蓝牙耳机",
}

// AddWord registers an extra dictionary word. It is a no-op without a segmenter.
func (ix *Indexer) AddWord(word string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.seg != nil {
		ix.seg.AddToken(word, 500, "n")
	}
}

// Keywords returns the deduplicated keywords for the given fields.
func (ix *Indexer) Keywords(fields ...string) string {
	seen := make(map[string]struct{})
	var out []string
	add := func(w string) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	for _, field := range fields {
		for _, word := range ix.cut(field) {
			if !hasLetterOrDigit(word) {
				continue
			}
			add(word)
			if hasHan(word) {
				add(Pinyin(word))
				add(Initials(word))
			}
		}
	}

	return strings.Join(out, " ")
}

func (ix *Indexer) cut(text string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.seg == nil {
		return strings.Fields(text)
	}
	return ix.seg.CutSearch(text, true)
}

// Pinyin spells text in toneless pinyin with no separators. Non-Han runes are
// kept as they are.
func Pinyin(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.NORMAL
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}
	return strings.ToLower(strings.Join(pinyin.LazyConvert(text, &args), ""))
}

// Initials returns the first letter of each Han syllable in text.
func Initials(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FIRST_LETTER
	return strings.Join(pinyin.LazyConvert(text, &args), "")
}

// NormalizeQuery prepares a user search term for matching against Keywords.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
