package models

// MaxHops bounds the number of redirect hops followed for one URL.
const MaxHops = 10

// ResolvedURL is the outcome of following a redirect chain.
// HopChain starts with Original and ends with FinalURL.
type ResolvedURL struct {
	Original string   `json:"original"`
	FinalURL string   `json:"final_url"`
	HopChain []string `json:"hop_chain"`
}

// NewResolvedURL builds a ResolvedURL from a non-empty hop chain.
func NewResolvedURL(chain []string) ResolvedURL {
	if len(chain) == 0 {
		return ResolvedURL{}
	}
	hops := make([]string, len(chain))
	copy(hops, chain)
	return ResolvedURL{
		Original: hops[0],
		FinalURL: hops[len(hops)-1],
		HopChain: hops,
	}
}

// Hops returns the number of redirects that were followed.
func (r ResolvedURL) Hops() int {
	if len(r.HopChain) == 0 {
		return 0
	}
	return len(r.HopChain) - 1
}

// Redirected reports whether the final URL differs from the original one.
func (r ResolvedURL) Redirected() bool {
	return r.Original != r.FinalURL
}
