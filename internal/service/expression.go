package service

import (
	"strings"
	"unicode"

	"semshapes/internal/domain"
)

// ParseExpression splits an arithmetic expression such as "king - man + woman" into signed terms.
//
// The expression is lower-cased and stripped of whitespace, every "-" becomes "+-", and the result
// is split on "+". A token containing "-" is negative and its word is the text between the first and
// second "-". Known limitation: words that themselves contain "-" cannot be expressed.
func ParseExpression(expression string) ([]domain.Term, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(expression))
	compact = strings.ReplaceAll(compact, "-", "+-")

	var terms []domain.Term
	for _, token := range strings.Split(compact, "+") {
		if token == "" {
			continue
		}
		if strings.Contains(token, "-") {
			terms = append(terms, domain.Term{Word: strings.Split(token, "-")[1], Sign: -1})
			continue
		}
		terms = append(terms, domain.Term{Word: token, Sign: 1})
	}
	if len(terms) == 0 {
		return nil, domain.ErrInvalidExpression
	}
	return terms, nil
}

// canonical is the form used to match results against expression words.
func canonical(word string) string {
	return strings.TrimRight(strings.ToLower(word), ".")
}
