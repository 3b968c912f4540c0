package params

const (
	// MinSecurityBits is the smallest accepted bit length for the group modulus.
	MinSecurityBits     = 1024
	DefaultSecurityBits = MinSecurityBits

	// PrimalityIterations is the number of Miller-Rabin rounds applied to p, q
	// and the modulus 2⋅p⋅q+1 before they are accepted.
	PrimalityIterations = 64

	// ExtraBitsP is the number of bits p has on top of q.
	// Together with the top two bits being set on both primes, this makes p/q > 2.
	ExtraBitsP = 2

	// MinPQRatio is the strict lower bound on ⌊p/q⌋.
	MinPQRatio = 2

	DefaultParticipants = 10
	DefaultMaxReading   = 10

	// DefaultSearchUsers and DefaultSearchRange bound the discrete log searches:
	// lowCount ∈ [0, users], lowSum, highSum ∈ [0, users⋅range].
	DefaultSearchUsers = 500
	DefaultSearchRange = 10

	// RoundIDLayout formats wall-clock round identifiers.
	RoundIDLayout = "2006-01-02 15:04:05"
)
