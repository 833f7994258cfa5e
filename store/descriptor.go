package store

// Monolingual tells whether a format stores one language per file.
type Monolingual int

const (
	// MonolingualEither formats can be loaded with or without a template.
	MonolingualEither Monolingual = iota
	// MonolingualAlways formats require a template.
	MonolingualAlways
	// MonolingualNever formats are always bilingual.
	MonolingualNever
)

func (m Monolingual) String() string {
	switch m {
	case MonolingualAlways:
		return "always"
	case MonolingualNever:
		return "never"
	default:
		return "either"
	}
}

// AllowsTemplate reports whether a template may be paired with the format.
func (m Monolingual) AllowsTemplate() bool { return m != MonolingualNever }

// AllowsBilingual reports whether the format can be loaded without a template.
func (m Monolingual) AllowsBilingual() bool { return m != MonolingualAlways }

// Capabilities is the trait set of a format.
type Capabilities struct {
	Monolingual Monolingual
	CanAddUnit  bool
	// CanDeleteUnit enables the cleanup operations.
	CanDeleteUnit      bool
	HasMultipleStrings bool
	// BilingualID names the bilingual sibling of a MonolingualAlways format,
	// tried during autodetection when loading fails without a template.
	BilingualID string
	// HashSource forces the source into id_hash even with a template.
	HashSource bool
	// MergesTemplate is set by backends that pair entries with the template
	// themselves while loading, so every native entry already carries
	// source and target.
	MergesTemplate bool
	// NeedsTargetSync renders untranslated entries with their source.
	NeedsTargetSync bool
	// LanguageFormat names the LanguageCode rewrite used for file names.
	LanguageFormat string
}

// ExistingUnit is a previously known translation handed to loaders that can
// reuse it (the convert bridge).
type ExistingUnit struct {
	Context string
	Source  string
	Target  string
	Fuzzy   bool
}

// LoadContext carries everything a backend loader may use.
type LoadContext struct {
	Data           []byte
	Path           string
	Template       *Format
	Language       string
	SourceLanguage string
	IsTemplate     bool
	Existing       []ExistingUnit
}

// Descriptor is one registry entry: identity, capabilities and factories of
// a format.
type Descriptor struct {
	ID        string
	Name      string
	MimeType  string
	Extension string
	// Autoload lists lowercase file name globs matched by DetectFilename.
	Autoload []string

	Capabilities

	// Load parses data into a native store.
	Load func(lc *LoadContext) (Native, error)
	// NewTranslation derives an empty translation file for language from
	// base, which is a template or an existing file. Nil when the format
	// cannot create files.
	NewTranslation func(base []byte, language string) ([]byte, error)
	// Sniff reports whether data plausibly is in this format.
	Sniff func(data []byte) bool
}

// LanguageCode rewrites code using the descriptor's language format.
func (d *Descriptor) LanguageCode(code string) string {
	return LanguageCode(d.LanguageFormat, code)
}
