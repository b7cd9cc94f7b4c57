package service

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// Marcadores da codificação canônica das respostas
const (
	noQuiz      byte = 'n'
	withQuiz    byte = 'q'
	singleValue byte = 's'
	multiValue  byte = 'm'
	separator   byte = 0
)

// Fingerprint identifica o par (descrição, respostas) para o cache.
// Respostas nil e vazias geram chaves diferentes, pois produzem análises diferentes.
func Fingerprint(description string, answers model.QuizAnswers) string {
	buf := append([]byte(strings.TrimSpace(description)), separator)

	if answers == nil {
		buf = append(buf, noQuiz)
	} else {
		buf = append(buf, withQuiz)
		// Keys já vem ordenado
		for _, key := range answers.Keys() {
			buf = append(buf, key...)
			buf = append(buf, separator)

			answer := answers[key]
			if answer.IsMulti() {
				buf = append(buf, multiValue)
				for _, v := range answer.Multi {
					buf = append(buf, v...)
					buf = append(buf, separator)
				}
			} else {
				buf = append(buf, singleValue)
				buf = append(buf, answer.Single...)
			}
			buf = append(buf, separator)
		}
	}

	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
