package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// LayoutVersion is mixed into every layout key. Bump it whenever the
// generators change so stale layouts are never served.
const LayoutVersion = 1

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey identifies a built layout by everything that shapes it.
	LayoutKey(opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered snapshot of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the inputs that determine a layout.
type LayoutKeyOpts struct {
	Seed      uint64 `json:"seed"`
	Foliage   int    `json:"foliage"`
	Ornaments int    `json:"ornaments"`
	Photos    int    `json:"photos"`
	Strands   int    `json:"strands"`
	Topper    bool   `json:"topper"`
}

// ArtifactKeyOpts lists the inputs that determine a rendered snapshot.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Current float64 `json:"current"`
	Elapsed float64 `json:"elapsed"`
	Style   string  `json:"style,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:v<version>:<sha256>".
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey(fmt.Sprintf("layout:v%d", LayoutVersion), opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data. Artifact keys embed the hash of
// the layout key rather than the key itself.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins prefix with the hash of the JSON-encoded parts. Struct
// fields encode in declaration order, so equal options give equal keys.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		panic(fmt.Sprintf("cache: unencodable key parts: %v", err))
	}
	return prefix + ":" + Hash(data)
}
