package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWordsSamples(t *testing.T) {
	cases := map[int64]string{
		0:         "Zero Rupees Only",
		1:         "One Rupees Only",
		19:        "Nineteen Rupees Only",
		40:        "Forty Rupees Only",
		238:       "Two Hundred Thirty Eight Rupees Only",
		840:       "Eight Hundred Forty Rupees Only",
		1000:      "One Thousand Rupees Only",
		10238:     "Ten Thousand Two Hundred Thirty Eight Rupees Only",
		100000:    "One Lakh Rupees Only",
		523417:    "Five Lakh Twenty Three Thousand Four Hundred Seventeen Rupees Only",
		10000000:  "One Crore Rupees Only",
		12345678:  "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees Only",
		999999999: "Ninety Nine Crore Ninety Nine Lakh Ninety Nine Thousand Nine Hundred Ninety Nine Rupees Only",
	}
	for amount, want := range cases {
		assert.Equal(t, want, AmountInWords(amount), "amount %d", amount)
	}
}

// Crore groups recurse, so amounts past 99 crore still read correctly.
func TestAmountInWordsLargeCrore(t *testing.T) {
	assert.Equal(t, "One Hundred Crore Rupees Only", AmountInWords(1000000000))
	assert.Equal(t, "Two Hundred Fifty Crore Ten Lakh Rupees Only", AmountInWords(2501000000))
}

func TestAmountInWordsNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative amount")
		}
	}()
	AmountInWords(-1)
}
