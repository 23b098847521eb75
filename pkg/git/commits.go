package git

import "strings"

// Commit types used in history messages.
const (
	CommitTypeFeat  = "feat"
	CommitTypeFix   = "fix"
	CommitTypeDocs  = "docs"
	CommitTypeChore = "chore"
)

// Footer marks commits made by harp.
const Footer = "Recorded-by: harp"

// FormatCommitMessage builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Recorded-by: harp
func FormatCommitMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)
	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(subject)

	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)
	return sb.String()
}
