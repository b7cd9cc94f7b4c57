package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

func TestFingerprintDistinguishesAnswers(t *testing.T) {
	base := Fingerprint(ecommerceDescription, nil)

	assert.Len(t, base, 64)
	assert.Equal(t, base, Fingerprint("  "+ecommerceDescription+"\n", nil), "espaços nas pontas não mudam a chave")
	assert.NotEqual(t, base, Fingerprint(ecommerceDescription, model.QuizAnswers{}), "nil e vazio são análises diferentes")
	assert.NotEqual(t,
		Fingerprint(ecommerceDescription, model.QuizAnswers{"budget": model.SingleAnswer("micro")}),
		Fingerprint(ecommerceDescription, model.QuizAnswers{"budget": model.SingleAnswer("small")}),
	)
}

func TestFingerprintSeparatesAnswerShapes(t *testing.T) {
	single := Fingerprint("popis", model.QuizAnswers{"payments": model.SingleAnswer("gopay")})
	multi := Fingerprint("popis", model.QuizAnswers{"payments": model.MultiAnswer("gopay")})
	assert.NotEqual(t, single, multi, "resposta única e lista com um item são chaves diferentes")

	assert.NotEqual(t,
		Fingerprint("popis", model.QuizAnswers{"payments": model.MultiAnswer("gopay", "card")}),
		Fingerprint("popis", model.QuizAnswers{"payments": model.MultiAnswer("card", "gopay")}),
		"a ordem da lista aparece nas recomendações",
	)
	assert.NotEqual(t,
		Fingerprint("popis", model.QuizAnswers{"a": model.SingleAnswer("bc")}),
		Fingerprint("popis", model.QuizAnswers{"ab": model.SingleAnswer("c")}),
	)
	assert.NotEqual(t,
		Fingerprint("popis", model.QuizAnswers{"payments": model.MultiAnswer()}),
		Fingerprint("popis", model.QuizAnswers{}),
	)
}

func TestFingerprintIgnoresMapOrder(t *testing.T) {
	a := model.QuizAnswers{}
	a["budget"] = model.SingleAnswer("micro")
	a["timeline"] = model.SingleAnswer("asap")

	b := model.QuizAnswers{}
	b["timeline"] = model.SingleAnswer("asap")
	b["budget"] = model.SingleAnswer("micro")

	assert.Equal(t, Fingerprint("popis", a), Fingerprint("popis", b))
}

func TestFingerprintDeterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("mesma entrada gera a mesma chave", prop.ForAll(
		func(desc, tier string) bool {
			answers := model.QuizAnswers{"budget": model.SingleAnswer(tier)}
			return Fingerprint(desc, answers) == Fingerprint(desc, answers.Clone())
		},
		gen.AnyString(),
		gen.OneConstOf("micro", "small", "medium", "large", "enterprise"),
	))

	properties.TestingRun(t)
}
