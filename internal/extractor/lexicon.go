package extractor

import (
	"strings"

	"rijal-backend/internal/textnorm"
)

// companionNames are well-known companions of the Prophet, stored in
// normalized form so lookup survives diacritic and variant spelling.
var companionNames = normalizeAll([]string{
	"أبو بكر",
	"عمر بن الخطاب",
	"عثمان بن عفان",
	"علي بن أبي طالب",
	"عائشة",
	"أبو هريرة",
	"هريرة",
	"أنس بن مالك",
	"ابن عباس",
	"ابن عمر",
	"ابن مسعود",
	"جابر بن عبد الله",
	"معاذ بن جبل",
	"بلال",
	"خديجة",
	"فاطمة",
	"زيد بن ثابت",
	"طلحة",
	"الزبير",
	"سعد بن أبي وقاص",
	"أبو ذر",
	"سلمان الفارسي",
	"أبو سعيد الخدري",
	"أبو موسى الأشعري",
})

// scholarHonorifics mark a name as belonging to a later scholar rather than
// a chain narrator.
var scholarHonorifics = normalizeAll([]string{
	"الإمام",
	"الحافظ",
	"الشيخ",
	"العلامة",
	"المحدث",
	"الفقيه",
	"القاضي",
	"شيخ الإسلام",
})

func normalizeAll(entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = textnorm.Normalize(e)
	}
	return out
}

// categorize refines a mention's category by lexicon lookup. The extraction
// method's default is kept when neither lexicon matches.
func categorize(name string, def Category) Category {
	normalized := textnorm.Normalize(name)
	for _, honorific := range scholarHonorifics {
		if strings.Contains(normalized, honorific) {
			return CategoryScholar
		}
	}
	for _, companion := range companionNames {
		if strings.Contains(normalized, companion) {
			return CategoryCompanion
		}
	}
	return def
}
