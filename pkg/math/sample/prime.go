package sample

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// Prime returns a prime of exactly bits bits, with its two most significant
// bits set.
//
// Setting the top two bits means that the product of two such primes never
// comes out one bit short. The candidate passes the probabilistic test of
// crypto/rand.Prime; callers wanting a higher certainty run
// ProbablyPrime themselves, once the candidate has survived their cheaper checks.
func Prime(rand io.Reader, bits int) (*big.Int, error) {
	if bits < 3 {
		return nil, errors.New("sample: prime size must be at least 3 bits")
	}
	return randPrime(rand, bits)
}

var randPrime = rand.Prime
