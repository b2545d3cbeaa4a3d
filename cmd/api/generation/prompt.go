package generation

import (
	"fmt"
	"strings"
)

// Article excerpts sent to the model are capped per mode
const (
	phoneExcerptLimit  = 3000
	letterExcerptLimit = 4000
)

// Mode selects the kind of text produced
const (
	ModePhone  = "phone"
	ModePostal = "postal"
	ModeEmail  = "email"
)

// Request describes a letter or phone script to generate
type Request struct {
	ArticleTitle    string `json:"articleTitle"`
	ArticleText     string `json:"articleText"`
	Sentiment       string `json:"sentiment"`
	Action          string `json:"action"`
	PersonalContext string `json:"personalContext"`
	Mode            string `json:"mode"`
	UserName        string `json:"userName"`
	UserCity        string `json:"userCity"`
	RecipientName   string `json:"recipientName"`
	RecipientRole   string `json:"recipientRole"`
	RecipientLevel  string `json:"recipientLevel"`

	IsRefinement           bool   `json:"isRefinement"`
	CurrentDraft           string `json:"currentDraft"`
	RefinementInstructions string `json:"refinementInstructions"`
}

// Tone maps a sentiment to the voice of the generated text
func Tone(sentiment string) string {
	switch sentiment {
	case "concerned":
		return "worried and urgent"
	case "support":
		return "enthusiastic and grateful"
	case "angry":
		return "stern and disappointed"
	default:
		return "professional and firm"
	}
}

// BuildPrompt renders the model prompt for req
func BuildPrompt(req *Request) string {
	if req.IsRefinement {
		return buildRefinementPrompt(req)
	}

	var b strings.Builder
	limit := letterExcerptLimit

	if req.Mode == ModePhone {
		limit = phoneExcerptLimit
		fmt.Fprintf(&b, "Task: Write a short phone script for a constituent calling %s %s's office (%s).\n",
			req.RecipientRole, req.RecipientName, req.RecipientLevel)
	} else {
		fmt.Fprintf(&b, "Task: Write a formal constituent letter to %s %s (%s).\n",
			req.RecipientRole, req.RecipientName, req.RecipientLevel)
	}

	writeContext(&b, req)
	fmt.Fprintf(&b, "\nSource Text (Use this for facts):\n%s\n", truncateRunes(req.ArticleText, limit))

	b.WriteString("\nRequirements:\n")
	if req.Mode == ModePhone {
		fmt.Fprintf(&b, "- Start with \"Hi, my name is %s and I am a constituent from %s.\"\n", req.UserName, req.UserCity)
		b.WriteString("- Keep it under 45 seconds to read.\n")
		b.WriteString("- Be clear about the specific action requested.\n")
	} else {
		b.WriteString("- Use a formal, respectful tone.\n")
		fmt.Fprintf(&b, "- Address the letter to \"The Honorable %s\".\n", req.RecipientName)
		b.WriteString("- Clearly state the constituent's position and the specific action requested.\n")
		b.WriteString("- Include specific facts from the source text to back up the argument.\n")
		fmt.Fprintf(&b, "- Sign off with \"Sincerely, %s\".\n", req.UserName)
		b.WriteString("- Do not include placeholders like [Date] or [Address]; start with the salutation.\n")
	}

	return b.String()
}

func buildRefinementPrompt(req *Request) string {
	var b strings.Builder

	kind := "letter"
	limit := letterExcerptLimit
	if req.Mode == ModePhone {
		kind = "phone script"
		limit = phoneExcerptLimit
	}

	fmt.Fprintf(&b, "Task: Revise the constituent %s below for %s %s (%s).\n",
		kind, req.RecipientRole, req.RecipientName, req.RecipientLevel)
	writeContext(&b, req)
	fmt.Fprintf(&b, "\nCurrent Draft:\n%s\n", req.CurrentDraft)
	fmt.Fprintf(&b, "\nRevision Instructions:\n%s\n", req.RefinementInstructions)
	fmt.Fprintf(&b, "\nSource Text (Use this for facts):\n%s\n", truncateRunes(req.ArticleText, limit))
	b.WriteString("\nRequirements:\n- Return only the revised text.\n- Keep facts consistent with the source text.\n")

	return b.String()
}

func writeContext(b *strings.Builder, req *Request) {
	personal := req.PersonalContext
	if strings.TrimSpace(personal) == "" {
		personal = "None"
	}

	fmt.Fprintf(b, "Topic: %s\n", req.ArticleTitle)
	b.WriteString("\nUser Info:\n")
	fmt.Fprintf(b, "Name: %s\n", req.UserName)
	fmt.Fprintf(b, "City: %s\n", req.UserCity)
	fmt.Fprintf(b, "Stance: %s\n", Tone(req.Sentiment))
	fmt.Fprintf(b, "Desired Action: %s\n", strings.ReplaceAll(req.Action, "_", " "))
	fmt.Fprintf(b, "Personal Context: %s\n", personal)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
