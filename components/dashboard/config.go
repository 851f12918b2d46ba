package dashboard

// Config is the read-only view of a decoded manifest. Lookups walk sections
// and tables in manifest order, so when a table name is declared in more than
// one section the first declaration wins.
type Config struct {
	title      string
	periods    []Period
	sections   []Section
	duplicates []string
}

// NewConfig snapshots a manifest document into an immutable Config.
func NewConfig(doc *ManifestDocument) *Config {
	cfg := &Config{}
	if doc == nil {
		return cfg
	}
	cfg.title = doc.Title
	cfg.periods = append([]Period(nil), doc.Periods...)
	cfg.sections = make([]Section, len(doc.Sections))
	for i, section := range doc.Sections {
		cfg.sections[i] = cloneSection(section)
	}
	cfg.duplicates = findDuplicateTables(cfg.sections)
	return cfg
}

// Title returns the manifest title.
func (c *Config) Title() string { return c.title }

// Sections returns a copy of the configured sections in manifest order.
func (c *Config) Sections() []Section {
	out := make([]Section, len(c.sections))
	for i, section := range c.sections {
		out[i] = cloneSection(section)
	}
	return out
}

// Section looks up a section by key.
func (c *Config) Section(key string) (Section, bool) {
	for _, section := range c.sections {
		if section.Key == key {
			return cloneSection(section), true
		}
	}
	return Section{}, false
}

// TableConfig returns the first table entry whose tabla matches tableID.
func (c *Config) TableConfig(tableID string) (TableEntry, bool) {
	for _, section := range c.sections {
		for _, entry := range section.Tables {
			if entry.Table == tableID {
				return cloneEntry(entry), true
			}
		}
	}
	return TableEntry{}, false
}

// TableMetadata returns the metadata block for tableID, if both exist.
func (c *Config) TableMetadata(tableID string) (TableMetadata, bool) {
	entry, ok := c.TableConfig(tableID)
	if !ok || entry.Metadata == nil {
		return TableMetadata{}, false
	}
	return *entry.Metadata, true
}

// TableNames lists every distinct table name in manifest order.
func (c *Config) TableNames() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, section := range c.sections {
		for _, entry := range section.Tables {
			if _, ok := seen[entry.Table]; ok {
				continue
			}
			seen[entry.Table] = struct{}{}
			names = append(names, entry.Table)
		}
	}
	return names
}

// PeriodsFor returns the table's own periods or, when none are declared, the
// manifest-wide periods.
func (c *Config) PeriodsFor(tableID string) []Period {
	if entry, ok := c.TableConfig(tableID); ok && len(entry.Periods) > 0 {
		return entry.Periods
	}
	return append([]Period(nil), c.periods...)
}

// SectionPath returns the asset path of the section owning tableID.
func (c *Config) SectionPath(tableID string) string {
	entry, ok := c.TableConfig(tableID)
	if !ok {
		return ""
	}
	section, ok := c.Section(entry.SectionKey)
	if !ok {
		return ""
	}
	return section.Path
}

// DuplicateTables lists table names declared in more than one section.
func (c *Config) DuplicateTables() []string {
	return append([]string(nil), c.duplicates...)
}

func findDuplicateTables(sections []Section) []string {
	counts := map[string]int{}
	var order []string
	for _, section := range sections {
		for _, entry := range section.Tables {
			if counts[entry.Table] == 0 {
				order = append(order, entry.Table)
			}
			counts[entry.Table]++
		}
	}
	var dupes []string
	for _, name := range order {
		if counts[name] > 1 {
			dupes = append(dupes, name)
		}
	}
	return dupes
}

func cloneSection(section Section) Section {
	cloned := section
	cloned.Tables = make(TableList, len(section.Tables))
	for i, entry := range section.Tables {
		cloned.Tables[i] = cloneEntry(entry)
	}
	return cloned
}

func cloneEntry(entry TableEntry) TableEntry {
	cloned := entry
	if entry.Metadata != nil {
		meta := *entry.Metadata
		meta.Sources = append([]string(nil), entry.Metadata.Sources...)
		cloned.Metadata = &meta
	}
	if len(entry.Periods) > 0 {
		cloned.Periods = append([]Period(nil), entry.Periods...)
	}
	return cloned
}
