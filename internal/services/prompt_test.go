package services

import (
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/virtual-client-backend/internal/types"
)

func TestBuildClientSystemPrompt(t *testing.T) {
	svc := NewPromptService(testLogger(t))

	profile := &types.ClientProfile{
		Name:                "Maria",
		Age:                 34,
		Gender:              "female",
		SocioeconomicStatus: "working class",
		Issues:              datatypes.JSON([]byte(`["anxiety","job loss"]`)),
		PersonalityTraits:   datatypes.JSON([]byte(`["guarded","dry humor"]`)),
		CommunicationStyle:  "short answers at first",
		BackgroundStory:     "Recently laid off after twelve years at the same company.",
	}

	prompt := svc.BuildClientSystemPrompt(profile)

	for _, want := range []string{
		"Maria",
		"Age: 34",
		"anxiety, job loss",
		"guarded, dry humor",
		"short answers at first",
		"Recently laid off",
		"Never break character",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildClientSystemPromptSkipsEmptyFields(t *testing.T) {
	svc := NewPromptService(testLogger(t))

	prompt := svc.BuildClientSystemPrompt(&types.ClientProfile{Name: "Sam"})

	for _, absent := range []string{"Age:", "Race/ethnicity:", "Presenting issues:", "Background:"} {
		if strings.Contains(prompt, absent) {
			t.Fatalf("prompt should omit %q when the field is unset:\n%s", absent, prompt)
		}
	}
}

func TestGreetingInstruction(t *testing.T) {
	svc := NewPromptService(testLogger(t))
	if got := svc.GreetingInstruction(); !strings.Contains(got, "Greet the counselor") {
		t.Fatalf("GreetingInstruction=%q", got)
	}
}
