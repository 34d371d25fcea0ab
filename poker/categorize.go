package poker

// Bucket is a coarse preflop strength class for two hole cards
type Bucket int

const (
	BucketUnknown Bucket = iota
	BucketTrash
	BucketWeak
	BucketMedium
	BucketStrong
	BucketPremium
)

var bucketNames = [...]string{"unknown", "trash", "weak", "medium", "strong", "premium"}

func (b Bucket) String() string {
	if b < BucketUnknown || b > BucketPremium {
		return "unknown"
	}
	return bucketNames[b]
}

// PreflopBucket classifies hole cards: premium is JJ+ and AK, strong TT and
// AQ/AJ, medium 77+ and suited broadway, weak any other pair or suited
// cards at most two ranks apart. Everything else is trash.
func PreflopBucket(a, b Card) Bucket {
	if !a.Valid() || !b.Valid() || a == b {
		return BucketUnknown
	}

	lo, hi := a.Rank, b.Rank
	if lo > hi {
		lo, hi = hi, lo
	}
	pair := lo == hi
	suited := a.Suit == b.Suit

	switch {
	case pair && lo >= Jack, lo == King && hi == Ace:
		return BucketPremium
	case pair && lo == Ten, hi == Ace && lo >= Jack:
		return BucketStrong
	case pair && lo >= Seven, suited && lo >= Ten:
		return BucketMedium
	case pair, suited && hi-lo <= 2:
		return BucketWeak
	}
	return BucketTrash
}
