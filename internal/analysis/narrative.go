package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

const defaultNamePrefix = "Projekt"

// nameRule extrai um nome da descrição; o primeiro grupo é o nome candidato
type nameRule struct {
	pattern *regexp.Regexp
}

// Regras de nome em ordem de precedência: a primeira que casar e tiver
// tamanho aceitável vence.
var nameRules = []nameRule{
	{regexp.MustCompile(`(?i)(?:chci|potřebuji|chceme)\s+(?:vytvořit|udělat|postavit|vyvinout|navrhnout)\s+(.{10,60}?)(?:\.|,|$)`)},
	{regexp.MustCompile(`(?i)(?:projekt|aplikace|web|systém|platforma)\s+(?:pro|na)\s+(.{5,40}?)(?:\.|,|$)`)},
}

// Regras de assunto, combinadas com o prefixo do template
var subjectRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:e-shop|eshop)\s+(?:s|na|pro)\s+(\S+(?:\s+\S+){0,2})`),
	regexp.MustCompile(`(?i)(?:aplikac\S*|app\S*)\s+(?:pro|na)\s+(\S+(?:\s+\S+){0,2})`),
	regexp.MustCompile(`(?i)(?:web\S*)\s+(?:pro|na)\s+(\S+(?:\s+\S+){0,2})`),
	regexp.MustCompile(`(?i)(?:kampaň\S*)\s+(?:pro|na)\s+(\S+(?:\s+\S+){0,2})`),
}

const (
	minExtractedName = 6
	maxExtractedName = 59
)

var typeNames = map[model.ProjectType]string{
	model.ProjectTypeEcommerce:  "E-commerce řešení",
	model.ProjectTypeMobileApp:  "Mobilní aplikace",
	model.ProjectTypeAIML:       "AI/ML řešení",
	model.ProjectTypeSaaS:       "SaaS platforma",
	model.ProjectTypeMarketing:  "Marketingová kampaň",
	model.ProjectTypeBlockchain: "Web3 projekt",
}

// ProjectName derives a display name from the description. tpl may be nil.
func ProjectName(description string, tpl *model.Template, typeKey model.ProjectType) string {
	for _, rule := range nameRules {
		m := rule.pattern.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		extracted := strings.TrimSpace(m[1])
		if n := utf8.RuneCountInString(extracted); n >= minExtractedName && n <= maxExtractedName {
			return capitalize(extracted)
		}
	}

	prefix := defaultNamePrefix
	if tpl != nil && tpl.NamePrefix != "" {
		prefix = tpl.NamePrefix
	}

	for _, rule := range subjectRules {
		if m := rule.FindStringSubmatch(description); m != nil {
			return fmt.Sprintf("%s: %s", prefix, strings.TrimSpace(m[1]))
		}
	}

	if name, ok := typeNames[typeKey]; ok {
		return name
	}
	return prefix + " na míru"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var typeSummaries = map[model.ProjectType]string{
	model.ProjectTypeEcommerce:  "Na základě vaší specifikace navrhuji kompletní e-commerce řešení s důrazem na konverzní optimalizaci, bezpečné platby a spolehlivou logistiku. Projekt pokrývá vše od UX návrhu přes vývoj až po SEO a produktový obsah.",
	model.ProjectTypeMobileApp:  "Analyzoval jsem požadavky a navrhuji cross-platform mobilní aplikaci s nativním uživatelským zážitkem. Projekt zahrnuje UX výzkum, design pro obě platformy, vývoj, testování na reálných zařízeních a publikaci do App Store a Google Play.",
	model.ProjectTypeAIML:       "Na základě popisu navrhuji AI/ML řešení s kompletním data pipeline, od sběru a přípravy dat přes trénování modelu až po produkční API s monitoringem. Klíčový je iterativní přístup s důrazem na kvalitu dat.",
	model.ProjectTypeSaaS:       "Projekt vyžaduje robustní SaaS platformu s multi-tenant architekturou, subscription billing a profesionálním UX. Navrhuji iterativní vývoj s důrazem na škálovatelnost a bezpečnost od prvního dne.",
	model.ProjectTypeMarketing:  "Navrhuji integrovanou marketingovou kampaň pokrývající strategii, vizuální materiály, content tvorbu, PPC reklamy a správu sociálních sítí. Důraz na měřitelné výsledky a ROI.",
	model.ProjectTypeBlockchain: "Projekt vyžaduje komplexní Web3 řešení zahrnující smart contract vývoj, bezpečnostní audit, dApp frontend a community building. Bezpečnost a compliance jsou nejvyšší prioritou.",
}

const summaryEchoLength = 120

// ProjectSummary returns the static paragraph for the type, or a generic one
// quoting the start of the description.
func ProjectSummary(description string, typeKey model.ProjectType) string {
	if s, ok := typeSummaries[typeKey]; ok {
		return s
	}
	return fmt.Sprintf("Projekt zahrnuje komplexní řešení podle vašeho zadání: \"%s\" Navrhuji optimální rozdělení práce pro efektivní realizaci.",
		truncateRunes(description, summaryEchoLength))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

var scopeNouns = map[string]string{
	"micro":      "MVP verzi",
	"small":      "základní verzi",
	"medium":     "standardní řešení",
	"large":      "komplexní řešení",
	"enterprise": "enterprise řešení",
}

var scaledSummaryFormats = map[model.ProjectType]string{
	model.ProjectTypeEcommerce:  "Na základě vašich požadavků navrhuji %s e-shopu",
	model.ProjectTypeMobileApp:  "Navrhuji %s mobilní aplikace",
	model.ProjectTypeSaaS:       "Projekt zahrnuje %s SaaS platformy",
	model.ProjectTypeMarketing:  "Připravili jsme %s marketingové kampaně",
	model.ProjectTypeAIML:       "Navrhuji %s AI/ML integrace",
	model.ProjectTypeBlockchain: "Projekt pokrývá %s Web3 aplikace",
}

// ScaledSummary builds the summary sentence for a quiz-scaled analysis
func ScaledSummary(typeKey model.ProjectType, answers model.QuizAnswers, scaleFactor float64) string {
	scope, ok := scopeNouns[answerOr(answers, model.QuizKeyBudget, defaultBudgetTier)]
	if !ok {
		scope = "řešení"
	}

	format, ok := scaledSummaryFormats[typeKey]
	if !ok {
		format = "Navrhuji %s na míru"
	}
	summary := fmt.Sprintf(format, scope)

	switch {
	case scaleFactor <= 0.5:
		summary += ". Důraz je kladen na klíčové funkce s možností rozšíření v budoucnu."
	case scaleFactor >= 1.0:
		summary += ". Zahrnuje kompletní funkcionalitu včetně pokročilých funkcí a optimalizace."
	default:
		summary += ". Vyvážený poměr funkcí a rozpočtu pro solidní základ projektu."
	}
	return summary
}

const maxRecommendations = 5

// recommendationRule adiciona mensagens quando a condição é satisfeita
type recommendationRule struct {
	applies func(typeKey model.ProjectType, answers model.QuizAnswers, scale float64) bool
	message func(answers model.QuizAnswers) string
}

func fixed(msg string) func(model.QuizAnswers) string {
	return func(model.QuizAnswers) string { return msg }
}

// Regras avaliadas em ordem: orçamento, prazo e depois específicas do tipo
var recommendationRules = []recommendationRule{
	{
		applies: func(_ model.ProjectType, _ model.QuizAnswers, s float64) bool { return s <= 0.25 },
		message: fixed("S tímto rozpočtem doporučujeme začít s MVP verzí a postupně rozšiřovat funkcionalitu"),
	},
	{
		applies: func(_ model.ProjectType, _ model.QuizAnswers, s float64) bool { return s <= 0.25 },
		message: fixed("Zvažte použití hotových šablon a komponent pro urychlení vývoje"),
	},
	{
		applies: func(_ model.ProjectType, _ model.QuizAnswers, s float64) bool { return s > 0.25 && s <= 0.5 },
		message: fixed("Rozpočet pokrývá základní funkcionalitu. Prémiové funkce doporučujeme přidat v další fázi"),
	},
	{
		applies: func(_ model.ProjectType, _ model.QuizAnswers, s float64) bool { return s >= 1.0 },
		message: fixed("Rozpočet umožňuje komplexní řešení s důrazem na kvalitu a uživatelský zážitek"),
	},
	{
		applies: answerIs("", model.QuizKeyTimeline, "asap"),
		message: fixed("Pro rychlé dodání doporučujeme paralelní práci více členů týmu"),
	},
	{
		applies: answerIs("", model.QuizKeyTimeline, "relaxed"),
		message: fixed("Delší časový rámec umožní důkladnější testování a iterace designu"),
	},
	{
		applies: func(t model.ProjectType, a model.QuizAnswers, _ float64) bool {
			return t == model.ProjectTypeEcommerce && len(a.List("payments")) > 0
		},
		message: func(a model.QuizAnswers) string {
			return fmt.Sprintf("Integrace platebních bran (%s) je zahrnuta v rozpočtu", strings.Join(a.List("payments"), ", "))
		},
	},
	{
		applies: answerIs(model.ProjectTypeEcommerce, "productCount", "large"),
		message: fixed("Pro velký katalog doporučujeme implementovat pokročilé vyhledávání a filtry"),
	},
	{
		applies: answerIs(model.ProjectTypeMobileApp, "platforms", "both"),
		message: fixed("Cross-platform vývoj (iOS + Android) je cenově efektivnější než nativní vývoj"),
	},
	{
		applies: answerIs(model.ProjectTypeMobileApp, "backend", "complex"),
		message: fixed("Komplexní backend vyžaduje důkladnou API dokumentaci pro budoucí rozšíření"),
	},
	{
		applies: func(t model.ProjectType, a model.QuizAnswers, _ float64) bool {
			ad := a.String("adBudget")
			return t == model.ProjectTypeMarketing && ad != "" && ad != "none"
		},
		message: fixed("Media spend (PPC rozpočet) není zahrnut v této kalkulaci – počítejte s ním zvlášť"),
	},
}

// answerIs casa uma resposta exata; typeKey vazio vale para qualquer tipo
func answerIs(typeKey model.ProjectType, key, value string) func(model.ProjectType, model.QuizAnswers, float64) bool {
	return func(t model.ProjectType, a model.QuizAnswers, _ float64) bool {
		if typeKey != "" && t != typeKey {
			return false
		}
		return a.String(key) == value
	}
}

// ScaledRecommendations applies the rules in order, pads with the template's
// own recommendations and caps the list at five.
func ScaledRecommendations(tpl model.Template, typeKey model.ProjectType, answers model.QuizAnswers, scale float64) []string {
	recs := make([]string, 0, maxRecommendations)
	for _, rule := range recommendationRules {
		if rule.applies(typeKey, answers, scale) {
			recs = append(recs, rule.message(answers))
		}
	}

	for _, r := range tpl.Recommendations {
		if len(recs) >= maxRecommendations {
			break
		}
		recs = append(recs, r)
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
