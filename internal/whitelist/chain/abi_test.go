package chain

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"
)

func TestSelector(t *testing.T) {
	got := hex.EncodeToString(selector("transfer(address,uint256)"))
	if got != "a9059cbb" {
		t.Fatalf("expected a9059cbb, got %s", got)
	}
}

func readWord(t *testing.T, b []byte, at int) uint64 {
	t.Helper()
	if len(b) < at+wordSize {
		t.Fatalf("call data too short: %d < %d", len(b), at+wordSize)
	}
	return binary.BigEndian.Uint64(b[at+wordSize-8 : at+wordSize])
}

func TestEncodeAddManyToWhitelist(t *testing.T) {
	wallets := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
	}
	ids := []string{"abc", "a-reference-id-longer-than-one-word"}

	data, err := encodeAddManyToWhitelist(wallets, ids)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(data[:4], selector("addManyToWhitelist(address[],bytes[])")) {
		t.Fatalf("unexpected selector %x", data[:4])
	}
	args := data[4:]

	if got := readWord(t, args, 0); got != 64 {
		t.Fatalf("address array offset = %d", got)
	}
	bytesOffset := int(readWord(t, args, 32))
	if bytesOffset != 64+32+2*32 {
		t.Fatalf("bytes array offset = %d", bytesOffset)
	}
	if got := readWord(t, args, 64); got != 2 {
		t.Fatalf("address count = %d", got)
	}
	if !bytes.Equal(args[96+12:128], bytes.Repeat([]byte{0x11}, 20)) {
		t.Fatalf("first address not left padded: %x", args[96:128])
	}

	if got := readWord(t, args, bytesOffset); got != 2 {
		t.Fatalf("bytes count = %d", got)
	}
	elems := bytesOffset + wordSize
	first := int(readWord(t, args, elems))
	second := int(readWord(t, args, elems+wordSize))
	if first != 64 || second != 64+32+32 {
		t.Fatalf("element offsets = %d, %d", first, second)
	}
	if got := readWord(t, args, elems+first); got != 3 {
		t.Fatalf("first id length = %d", got)
	}
	if string(args[elems+first+wordSize:elems+first+wordSize+3]) != "abc" {
		t.Fatalf("first id not encoded")
	}
	if got := readWord(t, args, elems+second); got != uint64(len(ids[1])) {
		t.Fatalf("second id length = %d", got)
	}
	if len(args)%wordSize != 0 {
		t.Fatalf("call data not word aligned: %d", len(args))
	}
}

func TestEncodeRejectsBadAddress(t *testing.T) {
	if _, err := encodeAddManyToWhitelist([]string{"0x123"}, []string{"k"}); err == nil {
		t.Fatalf("expected error for short address")
	}
}
