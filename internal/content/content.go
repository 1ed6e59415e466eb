// Package content embeds the default catalogues shipped with the binary:
// job templates, the maintenance knowledge base and the study centre quizzes.
package content

import "embed"

// Default file names inside FS.
const (
	TemplatesFile = "data/templates.yaml"
	KnowledgeFile = "data/knowledge.yaml"
	QuizzesFile   = "data/quizzes.yaml"
)

// FS holds the default catalogues.
//
//go:embed data/*.yaml
var FS embed.FS
