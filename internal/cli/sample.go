package cli

import "kentei-quiz-service/internal/domain"

// demoTopics lists the topics in sampleRows; used when no topics are configured.
var demoTopics = []string{"history", "geography"}

// sampleRows is a small built-in question bank for running without a backing store.
func sampleRows() map[string][]domain.QuestionRow {
	return map[string][]domain.QuestionRow{
		"history": {
			{ID: "h-b-1", Level: "beginner", SelectionType: "single", DisplayType: "text", Question: "Which city became the capital in 794?", ChoiceA: "Nara", ChoiceB: "Heian-kyo", ChoiceC: "Kamakura", ChoiceD: "Edo", CorrectLabels: "B", HintText: "It is present-day Kyoto."},
			{ID: "h-b-2", Level: "beginner", SelectionType: "input", DisplayType: "text", Question: "In which year did the Meiji Restoration begin?", CorrectLabels: "1868", HintURL: "https://en.wikipedia.org/wiki/Meiji_Restoration"},
			{ID: "h-i-1", Level: "intermediate", SelectionType: "multiple", DisplayType: "text", Question: "Select every shogunate.", ChoiceA: "Kamakura", ChoiceB: "Muromachi", ChoiceC: "Heian", ChoiceD: "Tokugawa", CorrectLabels: "A,B,D", HintText: "Three of the four were military governments."},
			{ID: "h-a-1", Level: "advanced", SelectionType: "single", DisplayType: "text", Question: "Who compiled the Kojiki?", ChoiceA: "O no Yasumaro", ChoiceB: "Sugawara no Michizane", ChoiceC: "Fujiwara no Michinaga", CorrectLabels: "A"},
		},
		"geography": {
			{ID: "g-b-1", Level: "beginner", SelectionType: "single", DisplayType: "text", Question: "What is the highest mountain in Japan?", ChoiceA: "Mount Kita", ChoiceB: "Mount Fuji", ChoiceC: "Mount Aso", CorrectLabels: "B"},
			{ID: "g-i-1", Level: "intermediate", SelectionType: "multiple", DisplayType: "text", Question: "Which of these are among Japan's four main islands?", ChoiceA: "Honshu", ChoiceB: "Okinawa", ChoiceC: "Kyushu", ChoiceD: "Sado", CorrectLabels: "A,C"},
			{ID: "g-a-1", Level: "advanced", SelectionType: "input", DisplayType: "text", Question: "Name the largest lake in Japan.", CorrectLabels: "Biwa", HintText: "It lies in Shiga Prefecture."},
		},
	}
}
