package ring

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/latticego/fv/errs"
)

// ParsePolynomial parses the textual polynomial format of spec.md §6: a
// sum of terms separated by " + ", each term either HEXCOEFF or
// HEXCOEFFx^DECPOWER (coefficient 1 still spelled out as the hex digit
// "1"), terms in strictly descending power order, and the literal "0"
// denoting the zero polynomial. n is the coefficient count of the
// returned polynomial (must exceed every parsed power); bitCount is the
// per-coefficient bit width.
func ParsePolynomial(s string, n, bitCount int) (*Polynomial, error) {
	p := NewPolynomial(n, bitCount)
	if s == "0" {
		return p, nil
	}
	terms := strings.Split(s, " + ")
	lastPower := -1
	for _, term := range terms {
		coeffHex, power, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		if lastPower != -1 && power >= lastPower {
			return nil, errs.Parse("ring: term powers must strictly descend, got %d after %d", power, lastPower)
		}
		lastPower = power
		if power < 0 || power >= n {
			return nil, errs.Parse("ring: term power %d out of range [0,%d)", power, n)
		}
		v, ok := new(big.Int).SetString(coeffHex, 16)
		if !ok {
			return nil, errs.Parse("ring: malformed hex coefficient %q", coeffHex)
		}
		p.Coeff(power).SetBig(v)
	}
	return p, nil
}

func parseTerm(term string) (coeffHex string, power int, err error) {
	idx := strings.Index(term, "x^")
	if idx < 0 {
		if !isHexDigits(term) {
			return "", 0, errs.Parse("ring: malformed term %q", term)
		}
		return term, 0, nil
	}
	coeffHex = term[:idx]
	if !isHexDigits(coeffHex) {
		return "", 0, errs.Parse("ring: malformed hex coefficient in term %q", term)
	}
	powerStr := term[idx+2:]
	power, err = strconv.Atoi(powerStr)
	if err != nil {
		return "", 0, errs.Parse("ring: malformed power in term %q: %v", term, err)
	}
	return coeffHex, power, nil
}

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

// FormatPolynomial renders p in the textual polynomial format of
// spec.md §6, in strictly descending power order, hex coefficients
// lower-cased and without leading zeros, and "0" for the zero
// polynomial.
func FormatPolynomial(p *Polynomial) string {
	var terms []string
	for i := p.N() - 1; i >= 0; i-- {
		c := p.Coeff(i)
		if c.IsZero() {
			continue
		}
		hex := strings.ToLower(c.ToBig().Text(16))
		if i == 0 {
			terms = append(terms, hex)
		} else {
			terms = append(terms, fmt.Sprintf("%sx^%d", hex, i))
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}
