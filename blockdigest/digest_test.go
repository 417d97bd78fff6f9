// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdigest_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/kelpchain/kelpd/blockdigest"
)

func TestDigestDeterminism(t *testing.T) {
	record := []byte("1234567890abcdefghijklmnopqrstuvwxyz")

	one := blockdigest.NewDigest(record)
	two := blockdigest.NewDigest(record)
	if one != two {
		t.Fatalf("digest not deterministic: %s != %s", one, two)
	}

	other := blockdigest.NewDigest([]byte("1234567890abcdefghijklmnopqrstuvwxyZ"))
	if one == other {
		t.Fatalf("different records gave the same digest: %s", one)
	}
	if one.IsEmpty() {
		t.Fatal("digest is empty")
	}
}

func TestDigestScanRoundtrip(t *testing.T) {
	digest := blockdigest.NewDigest([]byte("scan roundtrip"))

	var scanned blockdigest.Digest
	n, err := fmt.Sscan(digest.String(), &scanned)
	if nil != err {
		t.Fatalf("scan error: %s", err)
	}
	if 1 != n {
		t.Fatalf("scanned %d items, expected 1", n)
	}
	if digest != scanned {
		t.Fatalf("scan mismatch: actual: %s  expected: %s", scanned, digest)
	}
}

func TestDigestScanRejectsShortHex(t *testing.T) {
	var digest blockdigest.Digest
	_, err := fmt.Sscan("4e07408562b", &digest)
	if nil == err {
		t.Fatal("short hex accepted")
	}
}

func TestDigestTextRoundtrip(t *testing.T) {
	digest := blockdigest.NewDigest([]byte("text roundtrip"))

	marshalled, err := json.Marshal(digest)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}

	var unmarshalled blockdigest.Digest
	err = json.Unmarshal(marshalled, &unmarshalled)
	if nil != err {
		t.Fatalf("unmarshal error: %s", err)
	}
	if digest != unmarshalled {
		t.Fatalf("text mismatch: actual: %s  expected: %s", unmarshalled, digest)
	}
}

func TestDigestFromBytes(t *testing.T) {
	digest := blockdigest.NewDigest([]byte("from bytes"))

	var decoded blockdigest.Digest
	err := blockdigest.DigestFromBytes(&decoded, digest[:])
	if nil != err {
		t.Fatalf("from bytes error: %s", err)
	}
	if digest != decoded {
		t.Fatalf("byte mismatch: actual: %s  expected: %s", decoded, digest)
	}

	err = blockdigest.DigestFromBytes(&decoded, digest[:10])
	if nil == err {
		t.Fatal("short buffer accepted")
	}
}
