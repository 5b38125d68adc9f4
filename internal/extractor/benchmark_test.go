package extractor

import (
	"bytes"
	"testing"

	"github.com/richardwooding/strscan/internal/codec"
)

// createASCIIBenchmarkData generates strings interspersed with binary noise
func createASCIIBenchmarkData(size int) []byte {
	data := make([]byte, 0, size+32)
	pattern := []byte("BenchmarkString123")
	separator := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0xFF}

	for len(data) < size {
		data = append(data, pattern...)
		data = append(data, separator...)
	}
	return data[:size]
}

// createUTF16BenchmarkData encodes "Test String 测试" repeatedly
func createUTF16BenchmarkData(size int) []byte {
	data := make([]byte, 0, size+64)
	pattern := []byte{
		0x54, 0x00, 0x65, 0x00, 0x73, 0x00, 0x74, 0x00, // "Test"
		0x20, 0x00,
		0x53, 0x00, 0x74, 0x00, 0x72, 0x00, 0x69, 0x00, 0x6E, 0x00, 0x67, 0x00, // "String"
		0x20, 0x00,
		0x4B, 0x6D, 0xD5, 0x8B, // "测试"
	}
	separator := []byte{0x00, 0x00, 0xFF, 0xFF}

	for len(data) < size {
		data = append(data, pattern...)
		data = append(data, separator...)
	}
	return data[:size]
}

func benchmarkExtract(b *testing.B, data []byte, config Config) {
	emit := func(Match) error { return nil }

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ExtractStrings(bytes.NewReader(data), config, emit); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtractASCII_1MB(b *testing.B) {
	benchmarkExtract(b, createASCIIBenchmarkData(1<<20), DefaultConfig())
}

func BenchmarkExtractASCII_10MB(b *testing.B) {
	benchmarkExtract(b, createASCIIBenchmarkData(10<<20), DefaultConfig())
}

func BenchmarkExtract8BitASCII_1MB(b *testing.B) {
	benchmarkExtract(b, createASCIIBenchmarkData(1<<20), configWith(4, codec.Bit8))
}

func BenchmarkExtractUTF8_1MB(b *testing.B) {
	config := DefaultConfig()
	config.Unicode = UnicodeLocale
	data := bytes.Repeat([]byte("Hello 世界 Привет 🌍\x00\xff"), (1<<20)/32)
	benchmarkExtract(b, data, config)
}

func BenchmarkExtractUTF16LE_1MB(b *testing.B) {
	benchmarkExtract(b, createUTF16BenchmarkData(1<<20), configWith(4, codec.UTF16LE))
}

func BenchmarkExtractASCII_MinLength16(b *testing.B) {
	benchmarkExtract(b, createASCIIBenchmarkData(1<<20), configWith(16, codec.Bit7))
}
