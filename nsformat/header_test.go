package nsformat

import "testing"

func TestCompressedHeaderRoundTrip(t *testing.T) {
	h := CompressedHeader{UncompressedSize: 12345}
	wire := h.Encode(nil)
	if len(wire) != CompressedHeaderSize {
		t.Fatalf("encoded length = %d, want %d", len(wire), CompressedHeaderSize)
	}
	got, used, err := DecodeCompressedHeader(wire)
	if err != nil {
		t.Fatalf("DecodeCompressedHeader: %v", err)
	}
	if used != CompressedHeaderSize || got.UncompressedSize != h.UncompressedSize {
		t.Fatalf("DecodeCompressedHeader = %+v, used %d, want %+v, used %d", got, used, h, CompressedHeaderSize)
	}
}

func TestPackageHeaderRoundTrip(t *testing.T) {
	h := PackageHeader{FolderName: "myapp"}
	wire := h.Encode(nil)
	got, used, err := DecodePackageHeader(wire)
	if err != nil {
		t.Fatalf("DecodePackageHeader: %v", err)
	}
	if used != len(wire) || got.FolderName != h.FolderName {
		t.Fatalf("DecodePackageHeader = %+v, used %d, want %+v, used %d", got, used, h, len(wire))
	}
}

func TestPatchHeaderRoundTrip(t *testing.T) {
	h := PatchHeader{FileRecordCount: 7}
	wire := h.Encode(nil)
	if len(wire) != PatchHeaderSize {
		t.Fatalf("encoded length = %d, want %d", len(wire), PatchHeaderSize)
	}
	got, used, err := DecodePatchHeader(wire)
	if err != nil {
		t.Fatalf("DecodePatchHeader: %v", err)
	}
	if used != PatchHeaderSize || got.FileRecordCount != h.FileRecordCount {
		t.Fatalf("DecodePatchHeader = %+v, want %+v", got, h)
	}
}

func TestDecodeRejectsForeignTitle(t *testing.T) {
	if _, _, err := DecodeCompressedHeader([]byte("nSuite package....................")); err == nil {
		t.Fatalf("DecodeCompressedHeader accepted a package title")
	}
	if _, _, err := DecodePackageHeader([]byte("nSuite patch................")); err == nil {
		t.Fatalf("DecodePackageHeader accepted a patch title")
	}
	if _, _, err := DecodePatchHeader([]byte("nSuite compressed...........")); err == nil {
		t.Fatalf("DecodePatchHeader accepted a compressed title")
	}
}

func TestTitleLengths(t *testing.T) {
	if len(TitleCompressed) != 17 {
		t.Fatalf("len(TitleCompressed) = %d, want 17", len(TitleCompressed))
	}
	if len(TitlePackage) != 14 {
		t.Fatalf("len(TitlePackage) = %d, want 14", len(TitlePackage))
	}
	if len(TitlePatch) != 12 {
		t.Fatalf("len(TitlePatch) = %d, want 12", len(TitlePatch))
	}
}
