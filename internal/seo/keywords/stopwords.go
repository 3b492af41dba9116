package keywords

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/edgecomet/seometa/internal/common/yamlutil"
)

// LanguageEnglish is the only built-in stopword language.
const LanguageEnglish = "en"

// Stopwords is an immutable set of lowercase low-information words.
// It is built once at startup and shared read-only between requests.
type Stopwords struct {
	words map[string]struct{}
}

// StopwordsFile is the YAML layout of a custom stopword list.
type StopwordsFile struct {
	Language  string   `yaml:"language"`
	Stopwords []string `yaml:"stopwords"`
}

// NewStopwords builds a set from words; entries are lowercased and trimmed.
func NewStopwords(words ...string) Stopwords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return Stopwords{words: set}
}

// DefaultStopwords returns the built-in list for language.
func DefaultStopwords(language string) (Stopwords, error) {
	switch strings.ToLower(language) {
	case "", LanguageEnglish:
		return NewStopwords(englishStopwords...), nil
	default:
		return Stopwords{}, fmt.Errorf("no built-in stopwords for language %q", language)
	}
}

// LoadStopwords reads a YAML stopword file. When the file names a language
// other than expected it is rejected, since only one working language is
// active at a time.
func LoadStopwords(path, expectedLanguage string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords file: %w", err)
	}

	var file StopwordsFile
	if err := yamlutil.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse stopwords file: %w", err)
	}

	if file.Language != "" && expectedLanguage != "" && !strings.EqualFold(file.Language, expectedLanguage) {
		return nil, fmt.Errorf("stopwords file language %q does not match engine language %q", file.Language, expectedLanguage)
	}

	return file.Stopwords, nil
}

// With returns a new set containing s plus words.
func (s Stopwords) With(words ...string) Stopwords {
	merged := make([]string, 0, len(s.words)+len(words))
	for w := range s.words {
		merged = append(merged, w)
	}
	return NewStopwords(append(merged, words...)...)
}

// Contains reports whether word (already lowercase) is a stopword.
func (s Stopwords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of stopwords in the set.
func (s Stopwords) Len() int {
	return len(s.words)
}

// Words returns the sorted stopwords.
func (s Stopwords) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

var englishStopwords = []string{
	"a", "about", "above", "across", "after", "afterwards", "again", "against",
	"all", "almost", "alone", "along", "already", "also", "although", "always",
	"am", "among", "amongst", "an", "and", "another", "any", "anyhow", "anyone",
	"anything", "anyway", "anywhere", "are", "aren't", "around", "as", "at",

	"back", "be", "became", "because", "become", "becomes", "becoming", "been",
	"before", "beforehand", "behind", "being", "below", "beside", "besides",
	"between", "beyond", "both", "but", "by",

	"can", "can't", "cannot", "could", "couldn't",

	"did", "didn't", "do", "does", "doesn't", "doing", "don't", "done", "down",
	"during",

	"each", "either", "else", "elsewhere", "enough", "entirely", "especially",
	"etc", "even", "ever", "every", "everyone", "everything", "everywhere",

	"few", "for", "former", "formerly", "from", "further",

	"get", "gets", "got",

	"had", "hadn't", "has", "hasn't", "have", "haven't", "having", "he", "he'd",
	"he'll", "he's", "hence", "her", "here", "hereafter", "hereby", "herein",
	"here's", "hereupon", "hers", "herself", "him", "himself", "his", "how",
	"however",

	"i", "i'd", "i'll", "i'm", "i've", "if", "in", "indeed", "into", "is",
	"isn't", "it", "it's", "its", "itself",

	"just",

	"keep",

	"last", "latter", "latterly", "least", "less", "let", "let's", "like",
	"likely",

	"made", "make", "many", "may", "maybe", "me", "meanwhile", "might", "mine",
	"more", "moreover", "most", "mostly", "much", "must", "mustn't", "my",
	"myself",

	"neither", "never", "nevertheless", "next", "no", "nobody", "none", "noone",
	"nor", "not", "nothing", "now", "nowhere",

	"of", "off", "often", "on", "once", "one", "only", "onto", "or", "other",
	"others", "otherwise", "our", "ours", "ourselves", "out", "over", "own",

	"per", "perhaps", "please", "put",

	"rather", "re", "really",

	"same", "see", "seem", "seemed", "seeming", "seems", "several", "she",
	"she'd", "she'll", "she's", "should", "shouldn't", "since", "so", "some",
	"somehow", "someone", "something", "sometime", "sometimes", "somewhere",
	"still", "such",

	"take", "than", "that", "that's", "the", "their", "theirs", "them",
	"themselves", "then", "thence", "there", "thereafter", "thereby",
	"therefore", "therein", "there's", "thereupon", "these", "they", "they'd",
	"they'll", "they're", "they've", "this", "those", "through", "throughout",
	"thru", "thus", "to", "together", "too", "toward", "towards",

	"under", "until", "up", "upon", "us", "use", "used", "using",

	"very", "via",

	"was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "well", "were",
	"weren't", "what", "whatever", "what's", "when", "whence", "whenever",
	"where", "whereafter", "whereas", "whereby", "wherein", "where's",
	"whereupon", "wherever", "whether", "which", "while", "whither", "who",
	"who'd", "whoever", "who'll", "who's", "whom", "whose", "why", "will",
	"with", "within", "without", "won't", "would", "wouldn't",

	"yet", "you", "you'd", "you'll", "you're", "you've", "your", "yours",
	"yourself", "yourselves",

	"ain't", "it'll", "shan't", "that'll", "when's",
}
