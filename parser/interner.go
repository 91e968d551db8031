package parser

// Interner keeps one canonical copy of strings that repeat throughout a
// ledger, such as account names and currencies.
type Interner struct {
	pool map[string]string
}

// NewInterner creates an interner sized for capacity distinct strings.
func NewInterner(capacity int) *Interner {
	return &Interner{pool: make(map[string]string, capacity)}
}

// Intern returns the canonical version of s.
func (i *Interner) Intern(s string) string {
	if interned, ok := i.pool[s]; ok {
		return interned
	}
	i.pool[s] = s
	return s
}

// InternBytes interns the string form of b. The lookup does not allocate.
func (i *Interner) InternBytes(b []byte) string {
	if interned, ok := i.pool[string(b)]; ok {
		return interned
	}
	s := string(b)
	i.pool[s] = s
	return s
}

// Size returns the number of distinct strings held.
func (i *Interner) Size() int {
	return len(i.pool)
}
