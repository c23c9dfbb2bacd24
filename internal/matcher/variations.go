package matcher

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VariationEntry maps a canonical store name to its known textual variants,
// including official names, abbreviations and common OCR misreadings
type VariationEntry struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// VariationDictionary is the read-only store variation table.
// Entries keep their declaration order, which is also the match order.
type VariationDictionary struct {
	entries []VariationEntry
}

// variationFile is the on-disk layout of a variations extension file
type variationFile struct {
	Stores []VariationEntry `yaml:"stores"`
}

// NewVariationDictionary builds a dictionary from entries. Entries sharing a
// canonical name are merged.
func NewVariationDictionary(entries []VariationEntry) (*VariationDictionary, error) {
	d := &VariationDictionary{}
	for i, entry := range entries {
		canonical := strings.TrimSpace(entry.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("variation entry %d has no canonical name", i)
		}
		d.merge(canonical, entry.Variants)
	}
	return d, nil
}

// DefaultVariations returns the built-in dictionary of Japanese retail chains
func DefaultVariations() *VariationDictionary {
	d, err := NewVariationDictionary(defaultEntries)
	if err != nil {
		panic(err)
	}
	return d
}

// LoadVariations extends the built-in dictionary with the entries of a YAML file:
//
//	stores:
//	  - canonical: 成城石井
//	    variants: [SEIJO ISHII, 成城石丼]
func LoadVariations(path string) (*VariationDictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variations file: %w", err)
	}

	var file variationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse variations file: %w", err)
	}

	return DefaultVariations().Extend(file.Stores)
}

// Extend returns a new dictionary with entries merged in. The receiver is
// left untouched.
func (d *VariationDictionary) Extend(entries []VariationEntry) (*VariationDictionary, error) {
	combined := make([]VariationEntry, 0, len(d.entries)+len(entries))
	combined = append(combined, d.Entries()...)
	combined = append(combined, entries...)
	return NewVariationDictionary(combined)
}

// Entries returns a copy of the dictionary entries
func (d *VariationDictionary) Entries() []VariationEntry {
	entries := make([]VariationEntry, len(d.entries))
	for i, entry := range d.entries {
		entries[i] = VariationEntry{
			Canonical: entry.Canonical,
			Variants:  append([]string(nil), entry.Variants...),
		}
	}
	return entries
}

// Len returns the number of canonical stores
func (d *VariationDictionary) Len() int {
	return len(d.entries)
}

// Lookup returns the variants of a canonical store name
func (d *VariationDictionary) Lookup(canonical string) ([]string, bool) {
	for _, entry := range d.entries {
		if entry.Canonical == canonical {
			return append([]string(nil), entry.Variants...), true
		}
	}
	return nil, false
}

func (d *VariationDictionary) merge(canonical string, variants []string) {
	idx := -1
	for i := range d.entries {
		if d.entries[i].Canonical == canonical {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.entries = append(d.entries, VariationEntry{Canonical: canonical})
		idx = len(d.entries) - 1
	}

	entry := &d.entries[idx]
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" || containsString(entry.Variants, v) {
			continue
		}
		entry.Variants = append(entry.Variants, v)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

var defaultEntries = []VariationEntry{
	{Canonical: "セブンイレブン", Variants: []string{"セブン-イレブン", "セブンイレブン・ジャパン", "7-11", "7-ELEVEN", "SEVEN-ELEVEN", "SEVEN ELEVEN", "セブンｲﾚﾌﾞﾝ"}},
	{Canonical: "ファミリーマート", Variants: []string{"ファミリーマート", "ファミマ", "FamilyMart", "FAMILY MART", "ファミリ一マート"}},
	{Canonical: "ローソン", Variants: []string{"ローソン", "LAWSON", "ロ一ソン", "口ーソン", "ナチュラルローソン", "ローソンストア100"}},
	{Canonical: "ミニストップ", Variants: []string{"ミニストップ", "MINISTOP", "ミニストツプ"}},
	{Canonical: "デイリーヤマザキ", Variants: []string{"デイリーヤマザキ", "DAILY YAMAZAKI", "デイリ一ヤマザキ"}},
	{Canonical: "スターバックス", Variants: []string{"スターバックス", "スターバックスコーヒー", "STARBUCKS", "STARBUCKS COFFEE", "スタバ"}},
	{Canonical: "ドトールコーヒー", Variants: []string{"ドトール", "DOUTOR", "ドト一ル"}},
	{Canonical: "タリーズコーヒー", Variants: []string{"タリーズ", "TULLY'S COFFEE", "TULLYS"}},
	{Canonical: "コメダ珈琲店", Variants: []string{"コメダ珈琲", "コメダ", "KOMEDA"}},
	{Canonical: "マクドナルド", Variants: []string{"マクドナルド", "McDonald's", "MCDONALDS", "日本マクドナルド"}},
	{Canonical: "ケンタッキーフライドチキン", Variants: []string{"ケンタッキー", "KFC", "KENTUCKY FRIED CHICKEN"}},
	{Canonical: "吉野家", Variants: []string{"吉野家", "YOSHINOYA"}},
	{Canonical: "すき家", Variants: []string{"すき家", "SUKIYA"}},
	{Canonical: "松屋", Variants: []string{"松屋", "MATSUYA"}},
	{Canonical: "イオン", Variants: []string{"イオン", "AEON", "イオンモール", "イオンスタイル", "イオンリテール"}},
	{Canonical: "イトーヨーカドー", Variants: []string{"イトーヨーカドー", "イトーヨーカ堂", "ITO YOKADO", "ヨーカドー"}},
	{Canonical: "ユニクロ", Variants: []string{"ユニクロ", "UNIQLO", "ユ二クロ"}},
	{Canonical: "無印良品", Variants: []string{"無印良品", "MUJI", "良品計画"}},
	{Canonical: "ダイソー", Variants: []string{"ダイソー", "DAISO", "ザ・ダイソー", "大創産業"}},
	{Canonical: "セリア", Variants: []string{"セリア", "SERIA", "Seria"}},
	{Canonical: "ニトリ", Variants: []string{"ニトリ", "NITORI", "二トリ"}},
	{Canonical: "ドン・キホーテ", Variants: []string{"ドン・キホーテ", "ドンキホーテ", "ドンキ", "DON QUIJOTE"}},
	{Canonical: "マツモトキヨシ", Variants: []string{"マツモトキヨシ", "マツキヨ", "MATSUMOTO KIYOSHI"}},
	{Canonical: "ヨドバシカメラ", Variants: []string{"ヨドバシカメラ", "ヨドバシ", "YODOBASHI"}},
	{Canonical: "ビックカメラ", Variants: []string{"ビックカメラ", "BIC CAMERA", "ビツクカメラ"}},
	{Canonical: "エディオン", Variants: []string{"エディオン", "EDION", "工ディオン"}},
}
