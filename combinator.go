package neotoma

// ParseFn is the shape of every primitive parsing step: feed it a
// state, get back a value or a failure. Sequencing combinators
// short-circuit on the first failure; speculative combinators run their
// bodies on forks and commit only on success.
type ParseFn[K any, T any] func(s *ParserState[K]) (T, error)

// Pair is the value shape of sequencing two loud parsers.
type Pair[A any, B any] struct {
	First  A
	Second B
}

// Just matches a single token equal to want and yields it.
func Just[K comparable](want K) ParseFn[K, K] {
	return func(s *ParserState[K]) (K, error) {
		return ParseWith(s, func(tok K) (K, bool) {
			if tok == want {
				return tok, true
			}
			var zero K
			return zero, false
		})
	}
}

// JustLit matches a single token against a grammar literal value using
// MatchLit and yields the token.
func JustLit[K any](want Lit) ParseFn[K, K] {
	return func(s *ParserState[K]) (K, error) {
		return ParseWith(s, func(tok K) (K, bool) {
			if MatchLit(tok, want) {
				return tok, true
			}
			var zero K
			return zero, false
		})
	}
}

// Match consumes one token and applies an arbitrary matcher to it,
// yielding whatever the matcher produced.
func Match[K any, T any](match func(K) (T, bool)) ParseFn[K, T] {
	return func(s *ParserState[K]) (T, error) {
		return ParseWith(s, match)
	}
}

// Map transforms a parser's value with f.
func Map[K any, T any, U any](p ParseFn[K, T], f func(T) U) ParseFn[K, U] {
	return func(s *ParserState[K]) (U, error) {
		v, err := p(s)
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v), nil
	}
}

// Then runs p1 then p2 and yields both values.
func Then[K any, A any, B any](p1 ParseFn[K, A], p2 ParseFn[K, B]) ParseFn[K, Pair[A, B]] {
	return func(s *ParserState[K]) (Pair[A, B], error) {
		var zero Pair[A, B]
		a, err := p1(s)
		if err != nil {
			return zero, err
		}
		b, err := p2(s)
		if err != nil {
			return zero, err
		}
		return Pair[A, B]{First: a, Second: b}, nil
	}
}

// ThenIgnore runs p1 then p2 and yields p1's value, discarding p2's.
func ThenIgnore[K any, A any, B any](p1 ParseFn[K, A], p2 ParseFn[K, B]) ParseFn[K, A] {
	return func(s *ParserState[K]) (A, error) {
		var zero A
		a, err := p1(s)
		if err != nil {
			return zero, err
		}
		if _, err := p2(s); err != nil {
			return zero, err
		}
		return a, nil
	}
}

// IgnoreThen runs p1 then p2 and yields p2's value, discarding p1's.
func IgnoreThen[K any, A any, B any](p1 ParseFn[K, A], p2 ParseFn[K, B]) ParseFn[K, B] {
	return func(s *ParserState[K]) (B, error) {
		var zero B
		if _, err := p1(s); err != nil {
			return zero, err
		}
		return p2(s)
	}
}

// Choice tries each alternative in order, each on its own fork. The
// first alternative that succeeds has its fork committed and its value
// returned; if none succeed the parse fails at the outer state's
// cursor.
func Choice[K any, T any](alts ...ParseFn[K, T]) ParseFn[K, T] {
	return func(s *ParserState[K]) (T, error) {
		for _, alt := range alts {
			fork := s.Fork()
			if v, err := alt(fork); err == nil {
				s.AdvanceTo(fork)
				return v, nil
			}
		}
		var zero T
		return zero, s.Err()
	}
}

// Repeat matches body as many times as it will go, committing the
// outer state after each success, and yields the collected values. It
// fails if fewer than atLeast matches were made.
func Repeat[K any, T any](body ParseFn[K, T], atLeast int) ParseFn[K, []T] {
	return func(s *ParserState[K]) ([]T, error) {
		fork := s.Fork()
		var acc []T
		for {
			v, err := body(fork)
			if err != nil {
				break
			}
			s.AdvanceTo(fork)
			acc = append(acc, v)
		}
		if len(acc) < atLeast {
			return nil, s.Err()
		}
		return acc, nil
	}
}

// OrNot matches body or succeeds silently with an empty Opt.
func OrNot[K any, T any](body ParseFn[K, T]) ParseFn[K, Opt[T]] {
	return func(s *ParserState[K]) (Opt[T], error) {
		fork := s.Fork()
		if v, err := body(fork); err == nil {
			s.AdvanceTo(fork)
			return Some(v), nil
		}
		return None[T](), nil
	}
}

// LookAhead succeeds iff body succeeds at the current position. It
// never advances the outer state and yields nothing.
func LookAhead[K any, T any](body ParseFn[K, T]) ParseFn[K, struct{}] {
	return func(s *ParserState[K]) (struct{}, error) {
		fork := s.Fork()
		if _, err := body(fork); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}
}

// LookAheadNot succeeds iff body fails at the current position. It
// never advances the outer state and yields nothing.
func LookAheadNot[K any, T any](body ParseFn[K, T]) ParseFn[K, struct{}] {
	return func(s *ParserState[K]) (struct{}, error) {
		fork := s.Fork()
		if _, err := body(fork); err == nil {
			return struct{}{}, s.Err()
		}
		return struct{}{}, nil
	}
}
