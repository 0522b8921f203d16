package i18n

import (
	"regexp"
)

// nltk stop words
var englishStopWords = []string{"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he", "him", "his", "himself", "she",
	"she's", "her", "hers", "herself", "it", "it's", "its", "itself", "they", "them", "their", "theirs",
	"themselves", "what", "which", "who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above", "below", "to", "from", "up",
	"down", "in", "out", "on", "off", "over", "under", "again", "further", "then", "once", "here", "there", "when",
	"where", "why", "how", "all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "n't",
	"should", "should've", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
	"couldn't", "didn", "doesn", "hadn", "hasn", "haven", "isn", "ma", "mightn", "mustn", "needn", "shan",
	"shouldn", "wasn", "weren", "won", "wouldn"}

var englishAbbreviations = [][]string{
	{"ltd", "ltd.", "limited"},
	{"corp", "corp.", "corporation"},
	{"l.l.c", "llc"},
	{"&", "and"},
	{"inc.", "inc", "incorporated"},
}

var question = regexp.MustCompile(`^(?:what|when|how|who) `)

func notQuestion(command string) bool {
	return !question.MatchString(command)
}

func englishTables() *Tables {
	abbreviations := make(map[string][]string)
	for _, variants := range englishAbbreviations {
		for _, v := range variants {
			abbreviations[v] = variants
		}
	}

	definite := regexp.MustCompile(`^the `)

	return &Tables{
		StopWords: englishStopWords,

		ArgumentNameOverrides: map[string][]string{
			"updated":     {"update time"},
			"picture_url": {"picture", "image", "photo"},
			"title":       {"headline", "title"},
			"file_name":   {"file name", "name"},
			"file_size":   {"file size", "size", "disk usage"},
			"mime_type":   {"file type", "type"},
		},

		IgnorableTokens: map[string][]string{
			"sportradar":             {"fc", "ac", "us", "if", "as", "rc", "rb", "il", "fk", "cd", "cf"},
			"imgflip:meme_id":        {"the"},
			"tt:currency_code":       {"us"},
			"tt:stock_id":            {"l.p.", "s.a.", "plc", "n.v", "s.a.b", "c.v."},
			"org:freedesktop:app_id": {"gnome"},
		},

		Abbreviations: abbreviations,

		NoIdea: []string{
			"no idea", "don't know", "dont know", "don't understand",
			"dont understand", "no clue",
			"doesn't make sense", "doesn't make any sense",
			"doesnt make sense", "doesnt make any sense",
		},

		ChangeSubjectTemplates: []string{
			"ok , how about {}",
			"how about {} instead",
			"no {}",
			"no i said {}",
			"no , i said {}",
			"i said {}",
			"i want {} instead",
			"no instead {}",
		},

		SingleDeviceTemplates: []DeviceTemplate{
			{"ask $device to $command", notQuestion},
			{"ask $device about $command", question.MatchString},
			{"ask $device for $command", definite.MatchString},
			{"ask $device $command", question.MatchString},
			{"tell $device to $command", notQuestion},
			{"tell $device that $command", notQuestion},
			{"use $device to $command", notQuestion},
			{"use $device and $command", notQuestion},
			{"order $device to $command", notQuestion},
			{"$command from $device", nil},
			{"$command using $device", nil},
			{"$command in $device", nil},
			{"$command by $device", nil},
			{"$command with $device", nil},
			{"talk to $device and $command", notQuestion},
			{"open $device and $command", notQuestion},
			{"launch $device and $command", notQuestion},
		},
	}
}
