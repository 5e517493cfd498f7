package cpu

import (
	"testing"

	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		pc          uint16
		memorySetup map[uint16]uint8
		wantOpcode  uint16
	}{
		{
			name:       "NOP",
			pc:         0xC000,
			wantOpcode: 0x0000,
		},
		{
			name:        "INC B",
			pc:          0xC000,
			memorySetup: map[uint16]uint8{0xC000: 0x04},
			wantOpcode:  0x0004,
		},
		{
			name:        "HALT",
			pc:          0xC000,
			memorySetup: map[uint16]uint8{0xC000: 0x76},
			wantOpcode:  0x0076,
		},
		{
			name: "an immediate byte is never a prefix",
			pc:   0xC000,
			// LD B,n with 0xCB as the operand
			memorySetup: map[uint16]uint8{0xC000: 0x06, 0xC001: 0xCB},
			wantOpcode:  0x0006,
		},
		{
			name:        "CB prefixed",
			pc:          0xC000,
			memorySetup: map[uint16]uint8{0xC000: 0xCB, 0xC001: 0x40},
			wantOpcode:  0xCB40,
		},
		{
			name:        "CB prefix crossing a page boundary",
			pc:          0xC0FF,
			memorySetup: map[uint16]uint8{0xC0FF: 0xCB, 0xC100: 0xFF},
			wantOpcode:  0xCBFF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmu := memory.New()
			for address, value := range tt.memorySetup {
				mmu.Write(address, value)
			}

			cpu := &CPU{bus: mmu, pc: tt.pc}
			op := Decode(cpu)

			assert.NotNil(t, op)
			assert.Equal(t, tt.wantOpcode, cpu.currentOpcode)
			assert.Equal(t, tt.pc, cpu.pc, "Decode must not move PC")
		})
	}
}

func TestGetOpcodeName(t *testing.T) {
	tests := []struct {
		name        string
		memorySetup map[uint16]uint8
		want        string
	}{
		{
			name:        "plain opcode with immediates",
			memorySetup: map[uint16]uint8{0xC000: 0x3E, 0xC001: 0x42},
			want:        "0x3E (LD A,n) n=0x42 nn=0x0042",
		},
		{
			name:        "16 bit immediate",
			memorySetup: map[uint16]uint8{0xC000: 0xCD, 0xC001: 0x34, 0xC002: 0x12},
			want:        "0xCD (CALL nn) n=0x34 nn=0x1234",
		},
		{
			name:        "CB prefixed",
			memorySetup: map[uint16]uint8{0xC000: 0xCB, 0xC001: 0x47},
			want:        "0xCB47 (BIT 0,A)",
		},
		{
			name:        "undefined opcode",
			memorySetup: map[uint16]uint8{0xC000: 0xD3},
			want:        "0xD3 (undefined) n=0x00 nn=0x0000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmu := memory.New()
			for address, value := range tt.memorySetup {
				mmu.Write(address, value)
			}

			cpu := &CPU{bus: mmu, pc: 0xC000}

			assert.Equal(t, tt.want, GetOpcodeName(cpu))
		})
	}
}
