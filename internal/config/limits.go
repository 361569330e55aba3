package config

// Field limits enforced on incoming requests.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
	LocationMaxLen    = 100
	NoteMaxLen        = 500

	NameMinLen     = 2
	NameMaxLen     = 50
	PasswordMinLen = 6

	AwarenessTitleMaxLen = 200
)

// ReferencePrefix prefixes every human-readable incident reference code.
const ReferencePrefix = "SENTRA"
