package pipeline

import (
	"slices"
	"sort"
)

type Language struct {
	Name        string   `json:"name"`
	Frameworks  []string `json:"frameworks"`
	Description string   `json:"description"`
}

var languages = map[string]Language{
	"python": {
		Frameworks:  []string{"sqlalchemy", "django", "tortoise-orm", "peewee"},
		Description: "Python ORMs for database management",
	},
	"javascript": {
		Frameworks:  []string{"prisma", "typeorm", "sequelize", "mongoose"},
		Description: "JavaScript/TypeScript ORMs",
	},
	"typescript": {
		Frameworks:  []string{"prisma", "typeorm", "mikro-orm"},
		Description: "TypeScript ORMs with type safety",
	},
	"java": {
		Frameworks:  []string{"spring-data-jpa", "hibernate", "mybatis"},
		Description: "Java persistence frameworks",
	},
	"go": {
		Frameworks:  []string{"gorm", "sqlx", "ent"},
		Description: "Go database frameworks",
	},
	"csharp": {
		Frameworks:  []string{"entity-framework", "dapper", "nhibernate"},
		Description: "C# database frameworks",
	},
	"ruby": {
		Frameworks:  []string{"activerecord", "sequel", "rom"},
		Description: "Ruby ORMs",
	},
	"php": {
		Frameworks:  []string{"laravel-eloquent", "doctrine", "propel"},
		Description: "PHP ORMs",
	},
}

// SupportedLanguages returns the code generation targets sorted by name.
func SupportedLanguages() []Language {
	out := make([]Language, 0, len(languages))
	for name, lang := range languages {
		lang.Name = name
		lang.Frameworks = slices.Clone(lang.Frameworks)
		out = append(out, lang)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

func supported(language, framework string) bool {
	lang, ok := languages[language]
	return ok && slices.Contains(lang.Frameworks, framework)
}
