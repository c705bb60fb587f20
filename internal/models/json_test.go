// json_test.go
//
// K9 management data service: dogs, trainers and training journals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of k9-management.
// k9-management is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// k9-management is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with k9-management.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package models

import (
	"encoding/json"
	"testing"
)

func TestSignaturePresent(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"null", false},
		{"  null ", false},
		{`{"userName":"hlv1","signature":"sig.png"}`, true},
		{`"legacy signature string"`, true},
	}

	for _, tt := range tests {
		if got := NewSignature(tt.raw).Present(); got != tt.want {
			t.Errorf("Present(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSignatureValueAndScan(t *testing.T) {
	v, err := SignatureJSON{}.Value()
	if err != nil || v != nil {
		t.Errorf("expected NULL for absent signature, got %v, %v", v, err)
	}

	var sig SignatureJSON
	if err := sig.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if sig.Present() {
		t.Error("expected absent signature after scanning NULL")
	}

	if err := sig.Scan([]byte(`{"userName":"leader"}`)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !sig.Present() {
		t.Error("expected present signature")
	}
}

func TestSignatureJSONRoundTrip(t *testing.T) {
	type holder struct {
		Sig SignatureJSON `json:"sig"`
	}

	out, err := json.Marshal(holder{})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"sig":null}` {
		t.Errorf("unexpected marshal of absent signature: %s", out)
	}

	var h holder
	if err := json.Unmarshal([]byte(`{"sig":{"userName":"hlv1"}}`), &h); err != nil {
		t.Fatal(err)
	}
	if !h.Sig.Present() {
		t.Error("expected signature after unmarshal")
	}
}
