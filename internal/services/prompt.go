package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type PromptService interface {
	BuildClientSystemPrompt(profile *types.ClientProfile) string
	GreetingInstruction() string
}

type promptService struct {
	log *logger.Logger
}

func NewPromptService(baseLog *logger.Logger) PromptService {
	return &promptService{
		log: baseLog.With("service", "PromptService"),
	}
}

func jsonStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// BuildClientSystemPrompt renders the persona instructions the model stays in
// character with for the whole session.
func (s *promptService) BuildClientSystemPrompt(profile *types.ClientProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are role-playing as %s, a client in a counseling training simulation. Stay in character at all times and never reveal that you are an AI.\n\n", profile.Name)

	b.WriteString("Character details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	if profile.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d\n", profile.Age)
	}
	if profile.Race != "" {
		fmt.Fprintf(&b, "- Race/ethnicity: %s\n", profile.Race)
	}
	if profile.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", profile.Gender)
	}
	if profile.SocioeconomicStatus != "" {
		fmt.Fprintf(&b, "- Socioeconomic status: %s\n", profile.SocioeconomicStatus)
	}
	if issues := jsonStrings(json.RawMessage(profile.Issues)); len(issues) > 0 {
		fmt.Fprintf(&b, "- Presenting issues: %s\n", strings.Join(issues, ", "))
	}
	if traits := jsonStrings(json.RawMessage(profile.PersonalityTraits)); len(traits) > 0 {
		fmt.Fprintf(&b, "- Personality traits: %s\n", strings.Join(traits, ", "))
	}
	if profile.CommunicationStyle != "" {
		fmt.Fprintf(&b, "- Communication style: %s\n", profile.CommunicationStyle)
	}
	if profile.BackgroundStory != "" {
		fmt.Fprintf(&b, "\nBackground:\n%s\n", profile.BackgroundStory)
	}

	b.WriteString("\nGuidelines:\n")
	b.WriteString("- Respond the way this person realistically would, including hesitation, deflection, or emotion where it fits the character.\n")
	b.WriteString("- Do not volunteer everything at once; let the counselor draw you out.\n")
	b.WriteString("- Keep replies conversational in length, not essays.\n")
	b.WriteString("- Never break character, give meta commentary, or act as an assistant.\n")

	return b.String()
}

func (s *promptService) GreetingInstruction() string {
	return "The counseling session is just beginning. Greet the counselor briefly, in character, the way this client would open a first meeting."
}
