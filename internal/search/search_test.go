package search

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPinyin(t *testing.T) {
	assert.Equal(t, "pingguoshouji", Pinyin("苹果手机"))
	assert.Equal(t, "iphoneshouji", Pinyin("iPhone手机"))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "pgsj", Initials("苹果手机"))
	assert.Equal(t, "sj", Initials("iPhone手机"))
}

func TestKeywords_WithoutSegmenter(t *testing.T) {
	ix := NewIndexer(nil)

	got := strings.Fields(ix.Keywords("苹果手机 iPhone", "Apple", "iPhone 13"))

	assert.Equal(t, []string{"苹果手机", "pingguoshouji", "pgsj", "iphone", "apple", "13"}, got)
}

func TestKeywords_SkipsPunctuation(t *testing.T) {
	ix := NewIndexer(nil)
	assert.Equal(t, "sony", ix.Keywords("- Sony ·"))
	assert.Empty(t, ix.Keywords("", "  "))
}

func TestAddWord_NoSegmenter(t *testing.T) {
	ix := NewIndexer(nil)
	ix.AddWord("游戏本")
	assert.Equal(t, "游戏本 youxiben yxb", ix.Keywords("游戏本"))
}

func TestIndexer_ConcurrentAddWord(t *testing.T) {
	ix := NewIndexer(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ix.AddWord("二手书")
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, "apple", ix.Keywords("Apple"))
		}()
	}
	wg.Wait()
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "apple iphone", NormalizeQuery("  Apple   iPHONE "))
	assert.Empty(t, NormalizeQuery("   "))
}
