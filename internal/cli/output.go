package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/voxnote/voxnote/internal/model"
)

// Output renders command results as text or JSON.
type Output struct {
	format string
}

// NewOutput creates an Output for the given format ("text" or "json").
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print renders v to stdout.
func (o *Output) Print(v any) {
	if o.format == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not encode output: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	switch val := v.(type) {
	case *model.Session:
		fmt.Printf("Name:        %s\n", val.DisplayName)
		fmt.Printf("Email:       %s\n", val.EmailKey)
		fmt.Printf("Member since: %s\n", val.CreatedAt.Format("January 2, 2006"))
		if val.LastLoginAt != nil {
			fmt.Printf("Last login:  %s\n", val.LastLoginAt.Format("January 2, 2006 15:04"))
		}
	case *model.UserStats:
		fmt.Printf("Conversions:    %d\n", val.TotalConversions)
		fmt.Printf("Speech to text: %d\n", val.SpeechToText)
		fmt.Printf("Text to speech: %d\n", val.TextToSpeech)
		fmt.Printf("Member since:   %s\n", val.MemberSince)
		fmt.Printf("Last login:     %s\n", val.LastLogin)
	case model.Preferences:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %v\n", k, val[k])
		}
	case []model.ConversionRecord:
		if len(val) == 0 {
			fmt.Println("No conversions recorded.")
			return
		}
		for _, r := range val {
			fmt.Printf("%s  %-14s  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Kind, r.Text)
		}
	case *model.ConversionRecord:
		fmt.Printf("Recorded %s conversion at %s\n",
			val.Kind, val.CreatedAt.Format("15:04:05"))
	default:
		fmt.Printf("%v\n", v)
	}
}
