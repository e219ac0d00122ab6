package services

import "strings"

var wordsBelowTwenty = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var wordsTens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords converts a whole-rupee amount to its legal "amount in
// words" form using Indian grouping (crore/lakh/thousand/hundred), e.g.
// 10238 -> "Ten Thousand Two Hundred Thirty Eight Rupees Only". Callers
// round to the nearest rupee first; fractional paise are never spoken.
// Negative amounts are a contract violation and panic.
func AmountInWords(amount int64) string {
	if amount < 0 {
		panic("services: AmountInWords called with negative amount")
	}
	if amount == 0 {
		return "Zero Rupees Only"
	}
	return numberWords(amount) + " Rupees Only"
}

func numberWords(n int64) string {
	var parts []string
	if crore := n / 1e7; crore > 0 {
		parts = append(parts, numberWords(crore), "Crore")
		n %= 1e7
	}
	if lakh := n / 1e5; lakh > 0 {
		parts = append(parts, belowHundred(lakh), "Lakh")
		n %= 1e5
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, belowHundred(thousand), "Thousand")
		n %= 1000
	}
	if hundred := n / 100; hundred > 0 {
		parts = append(parts, wordsBelowTwenty[hundred], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return wordsBelowTwenty[n]
	}
	if n%10 == 0 {
		return wordsTens[n/10]
	}
	return wordsTens[n/10] + " " + wordsBelowTwenty[n%10]
}
