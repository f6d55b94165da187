package domain

import "testing"

func TestPayloadCodecCarriesMandatoryFields(t *testing.T) {
	data, err := EncodePayload(FailedPayload{Reason: "no answer at door", DriverID: strPtr("drv-1")})
	if err != nil {
		t.Fatalf("EncodePayload() error = %v", err)
	}

	decoded, err := DecodePayload(data)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}

	p, ok := decoded.(FailedPayload)
	if !ok {
		t.Fatalf("decoded = %T, want FailedPayload", decoded)
	}
	if p.Reason != "no answer at door" {
		t.Errorf("reason = %q", p.Reason)
	}
	if p.DriverID == nil || *p.DriverID != "drv-1" {
		t.Errorf("driver id = %v, want drv-1", p.DriverID)
	}
}

func TestDecodePayloadRejectsReasonlessCancellation(t *testing.T) {
	if _, err := DecodePayload([]byte(`{"status":"cancelled"}`)); err == nil {
		t.Error("expected an error for a cancelled payload without a reason")
	}
	if _, err := DecodePayload([]byte(`{"status":"failed"}`)); err == nil {
		t.Error("expected an error for a failed payload without a reason")
	}
}

func TestDecodePayloadUnknownStatus(t *testing.T) {
	if _, err := DecodePayload([]byte(`{"status":"teleported"}`)); err == nil {
		t.Error("expected an error for an unknown status")
	}
}
