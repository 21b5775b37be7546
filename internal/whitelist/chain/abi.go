package chain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const wordSize = 32

// selector returns the 4 byte function selector for a canonical signature.
func selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// encodeAddManyToWhitelist builds call data for addManyToWhitelist(address[],bytes[]).
func encodeAddManyToWhitelist(wallets []string, kycIDs []string) ([]byte, error) {
	addrs := make([]byte, 0, wordSize*(len(wallets)+1))
	addrs = append(addrs, word(uint64(len(wallets)))...)
	for _, w := range wallets {
		a, err := decodeAddress(w)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, leftPad(a)...)
	}

	ids := word(uint64(len(kycIDs)))
	var tails []byte
	offset := uint64(wordSize * len(kycIDs))
	for _, id := range kycIDs {
		ids = append(ids, word(offset)...)
		elem := append(word(uint64(len(id))), rightPad([]byte(id))...)
		tails = append(tails, elem...)
		offset += uint64(len(elem))
	}
	ids = append(ids, tails...)

	out := append([]byte{}, selector("addManyToWhitelist(address[],bytes[])")...)
	out = append(out, word(2*wordSize)...)
	out = append(out, word(uint64(2*wordSize+len(addrs)))...)
	out = append(out, addrs...)
	out = append(out, ids...)
	return out, nil
}

// decodeAddressWord reads the address from a 32 byte ABI return value.
func decodeAddressWord(result string) (string, error) {
	raw := strings.TrimPrefix(result, "0x")
	if len(raw) < 2*wordSize {
		return "", fmt.Errorf("short address result %q", result)
	}
	return "0x" + strings.ToLower(raw[len(raw)-40:]), nil
}

func decodeAddress(addr string) ([]byte, error) {
	if !addressPattern.MatchString(addr) {
		return nil, fmt.Errorf("invalid wallet address %q", addr)
	}
	return hex.DecodeString(addr[2:])
}

func word(v uint64) []byte {
	w := make([]byte, wordSize)
	binary.BigEndian.PutUint64(w[wordSize-8:], v)
	return w
}

func leftPad(b []byte) []byte {
	w := make([]byte, wordSize)
	copy(w[wordSize-len(b):], b)
	return w
}

func rightPad(b []byte) []byte {
	n := (len(b) + wordSize - 1) / wordSize * wordSize
	w := make([]byte, n)
	copy(w, b)
	return w
}
