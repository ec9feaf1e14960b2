package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/source"
)

// fingerprintVersion changes whenever the stored tree layout does, so old
// entries simply stop matching.
const fingerprintVersion = "d2o-cache-v1"

// Key identifies an extraction request.
type Key struct {
	Path  []string
	Args  []string
	Kind  source.Kind
	Depth int
}

// RequestKey builds the key for a command extraction. Requests that may use
// man pages and requests that skip them are different kinds.
func RequestKey(path, args []string, skipMan bool, depth int) Key {
	kind := source.KindMan
	if skipMan {
		kind = source.KindHelp
	}
	return Key{Path: path, Args: args, Kind: kind, Depth: depth}
}

// Fingerprint is a hex sha256 over the normalized key. It depends only on
// the key's content: path elements are trimmed and empty ones dropped, and
// argument order does not matter.
func (k Key) Fingerprint() string {
	var path []string
	for _, p := range k.Path {
		if p = strings.TrimSpace(p); p != "" {
			path = append(path, p)
		}
	}
	args := slices.Clone(k.Args)
	slices.Sort(args)

	h := sha256.New()
	for _, part := range []string{
		fingerprintVersion,
		strings.Join(path, "\x1f"),
		strings.Join(args, "\x1f"),
		string(k.Kind),
		strconv.Itoa(k.Depth),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (k Key) String() string {
	return strings.Join(k.Path, " ") + " (" + string(k.Kind) + ", depth " + strconv.Itoa(k.Depth) + ")"
}
