package cpu

import (
	"testing"

	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/stretchr/testify/assert"
)

func TestNewCPUStartsInPostBootState(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	assert.Equal(t, uint16(0x01B0), cpu.getAF())
	assert.Equal(t, uint16(0x0013), cpu.getBC())
	assert.Equal(t, uint16(0x00D8), cpu.getDE())
	assert.Equal(t, uint16(0x014D), cpu.getHL())
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
	assert.Equal(t, uint16(0x0100), cpu.GetPC())

	assert.False(t, cpu.GetIME())
	assert.False(t, cpu.IsHalted())
	assert.False(t, cpu.IsLocked())
	assert.Equal(t, uint64(0), cpu.GetCycles())
}

func TestRegisterPairs(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	cpu.setBC(0x1234)
	assert.Equal(t, uint8(0x12), cpu.b)
	assert.Equal(t, uint8(0x34), cpu.c)
	assert.Equal(t, uint16(0x1234), cpu.getBC())

	cpu.setDE(0xABCD)
	assert.Equal(t, uint8(0xAB), cpu.d)
	assert.Equal(t, uint8(0xCD), cpu.e)
	assert.Equal(t, uint16(0xABCD), cpu.getDE())

	cpu.setHL(0x00FF)
	assert.Equal(t, uint8(0x00), cpu.h)
	assert.Equal(t, uint8(0xFF), cpu.l)
	assert.Equal(t, uint16(0x00FF), cpu.getHL())
}

func TestAFMasksTheLowNibble(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	cpu.setAF(0x12FF)

	assert.Equal(t, uint8(0x12), cpu.a)
	assert.Equal(t, uint8(0xF0), cpu.f)
	assert.Equal(t, uint16(0x12F0), cpu.getAF())
}

func TestFlagHelpers(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	cpu.f = 0
	cpu.setFlag(carryFlag)
	assert.True(t, cpu.isSetFlag(carryFlag))
	assert.Equal(t, uint8(1), cpu.flagToBit(carryFlag))
	assert.Equal(t, uint8(0), cpu.flagToBit(zeroFlag))

	cpu.setFlagToCondition(zeroFlag, true)
	assert.True(t, cpu.isSetFlag(zeroFlag))

	cpu.setFlagToCondition(zeroFlag, false)
	assert.False(t, cpu.isSetFlag(zeroFlag))

	cpu.resetFlag(carryFlag)
	assert.Equal(t, uint8(0), cpu.f)
}
