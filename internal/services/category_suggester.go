package services

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const fuzzyStoreThreshold = 0.7

type storePattern struct {
	category   string
	confidence float64
}

type keywordPattern struct {
	keywords   []string
	category   string
	confidence float64
}

type categorySuggester struct {
	storePatterns   map[string]storePattern
	storeNames      []string
	keywordPatterns []keywordPattern
}

// NewCategorySuggester creates a suggester backed by known Korean store names and item keywords
func NewCategorySuggester() CategorySuggesterInterface {
	patterns := initStorePatterns()

	// Longer names first so "롯데시네마" wins over a shorter overlapping name
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(names[i]), utf8.RuneCountInString(names[j])
		if li != lj {
			return li > lj
		}
		return names[i] < names[j]
	})

	return &categorySuggester{
		storePatterns:   patterns,
		storeNames:      names,
		keywordPatterns: initKeywordPatterns(),
	}
}

// Suggest returns a category name for the receipt, or "" with zero confidence
func (s *categorySuggester) Suggest(store string, itemNames []string) (string, float64) {
	if store != "" {
		normalized := normalizeForMatching(store)
		for _, name := range s.storeNames {
			if strings.Contains(normalized, normalizeForMatching(name)) {
				pattern := s.storePatterns[name]
				return pattern.category, pattern.confidence
			}
		}

		if match, score := s.FuzzyMatchStore(store); match != "" {
			pattern := s.storePatterns[match]
			return pattern.category, score * pattern.confidence
		}
	}

	text := strings.ToLower(store + " " + strings.Join(itemNames, " "))
	for _, pattern := range s.keywordPatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				return pattern.category, pattern.confidence
			}
		}
	}

	return "", 0.0
}

// FuzzyMatchStore finds the closest known store name above the similarity threshold
func (s *categorySuggester) FuzzyMatchStore(input string) (string, float64) {
	input = normalizeForMatching(input)
	if input == "" {
		return "", 0.0
	}

	var bestMatch string
	var bestScore float64

	for _, name := range s.storeNames {
		score := calculateSimilarity(input, normalizeForMatching(name))
		if score > bestScore && score > fuzzyStoreThreshold {
			bestScore = score
			bestMatch = name
		}
	}

	return bestMatch, bestScore
}

func initStorePatterns() map[string]storePattern {
	const (
		food      = "식비"
		transport = "교통비"
		shopping  = "쇼핑"
		medical   = "의료비"
		education = "교육비"
		telecom   = "통신비"
		culture   = "문화생활"
	)

	return map[string]storePattern{
		// Cafes, restaurants, convenience stores
		"스타벅스":      {food, 0.9},
		"starbucks": {food, 0.9},
		"이디야":       {food, 0.9},
		"투썸플레이스":    {food, 0.9},
		"메가커피":      {food, 0.9},
		"맥도날드":      {food, 0.9},
		"버거킹":       {food, 0.9},
		"롯데리아":      {food, 0.9},
		"파리바게뜨":     {food, 0.85},
		"뚜레쥬르":      {food, 0.85},
		"배달의민족":     {food, 0.85},
		"gs25":      {food, 0.7},
		"세븐일레븐":     {food, 0.7},

		// Fuel and transit
		"sk에너지":  {transport, 0.9},
		"gs칼텍스":  {transport, 0.9},
		"s-oil":  {transport, 0.9},
		"현대오일뱅크": {transport, 0.9},
		"코레일":    {transport, 0.9},
		"카카오t":   {transport, 0.85},
		"티머니":    {transport, 0.85},

		// Retail
		"이마트":  {shopping, 0.8},
		"홈플러스": {shopping, 0.8},
		"롯데마트": {shopping, 0.8},
		"코스트코": {shopping, 0.8},
		"다이소":  {shopping, 0.85},
		"올리브영": {shopping, 0.85},
		"쿠팡":   {shopping, 0.8},
		"무신사":  {shopping, 0.85},

		// Health
		"약국": {medical, 0.9},
		"의원": {medical, 0.85},
		"병원": {medical, 0.9},
		"치과": {medical, 0.9},

		// Learning
		"교보문고":  {education, 0.8},
		"yes24": {education, 0.75},
		"학원":    {education, 0.85},

		// Phone and internet
		"skt":  {telecom, 0.9},
		"lgu+": {telecom, 0.9},

		// Leisure
		"cgv":   {culture, 0.9},
		"메가박스":  {culture, 0.9},
		"롯데시네마": {culture, 0.9},
		"넷플릭스":  {culture, 0.9},
	}
}

func initKeywordPatterns() []keywordPattern {
	return []keywordPattern{
		{
			keywords:   []string{"아메리카노", "라떼", "커피", "김밥", "라면", "치킨", "피자", "식당", "도시락"},
			category:   "식비",
			confidence: 0.7,
		},
		{
			keywords:   []string{"주유", "휘발유", "경유", "주차", "택시", "버스", "지하철"},
			category:   "교통비",
			confidence: 0.7,
		},
		{
			keywords:   []string{"처방", "조제", "진료", "약제"},
			category:   "의료비",
			confidence: 0.7,
		},
		{
			keywords:   []string{"도서", "교재", "수강료"},
			category:   "교육비",
			confidence: 0.6,
		},
		{
			keywords:   []string{"영화", "관람", "공연", "티켓"},
			category:   "문화생활",
			confidence: 0.6,
		},
	}
}

// calculateSimilarity is 1 - levenshtein/maxLen over runes
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}

	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

func levenshteinDistance(r1, r2 []rune) int {
	previous := make([]int, len(r2)+1)
	current := make([]int, len(r2)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		current[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			current[j] = min(
				previous[j]+1,      // deletion
				current[j-1]+1,     // insertion
				previous[j-1]+cost, // substitution
			)
		}
		previous, current = current, previous
	}

	return previous[len(r2)]
}

// normalizeForMatching lower-cases and strips separators
func normalizeForMatching(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "", "'", "", ".", "", "(주)", "", "㈜", "").Replace(s)
}
