package cpu

import (
	"testing"

	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/stretchr/testify/assert"
)

func TestCPU_stack(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	cpu.sp = 0xFFFF
	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xFFFD), cpu.sp)

	popped := cpu.popStack()

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xFFFF), cpu.sp)
}

func TestCPU_inc(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "increases", reg: &cpu.a, arg: 0x0A, want: 0x0B},
		{desc: "sets zero flag", reg: &cpu.a, arg: 0xFF, want: 0, flags: zeroFlag | halfCarryFlag},
		{desc: "sets half carry flag", reg: &cpu.a, arg: 0x0F, want: 0x10, flags: halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.inc(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_dec(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "decreases", reg: &cpu.a, arg: 0x0A, want: 0x09, flags: subFlag},
		{desc: "sets half carry flag", reg: &cpu.a, arg: 0, want: 0xFF, flags: subFlag | halfCarryFlag},
		{desc: "sets zero flag", reg: &cpu.a, arg: 0x01, want: 0, flags: subFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.dec(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_rlc(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "rotates left", reg: &cpu.a, arg: 0x01, want: 0x02},
		{desc: "sets carry flag", reg: &cpu.a, arg: 0x80, want: 0x01, flags: carryFlag},
		{desc: "sets zero flag", reg: &cpu.b, arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.rlc(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_rl(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc         string
		reg          *uint8
		arg          uint8
		want         uint8
		initialFlags Flag
		flags        Flag
	}{
		{desc: "rotates left", reg: &cpu.a, arg: 0x01, want: 0x02},
		{desc: "adds carry bit", reg: &cpu.a, arg: 0x01, want: 0x03, initialFlags: carryFlag},
		{desc: "sets carry flag", reg: &cpu.a, arg: 0x80, want: 0, flags: carryFlag | zeroFlag},
		{desc: "sets zero flag", reg: &cpu.b, arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			*tC.reg = tC.arg
			cpu.rl(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_rrc(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "rotates right", reg: &cpu.a, arg: 0x02, want: 0x01},
		{desc: "sets carry flag", reg: &cpu.a, arg: 0x01, want: 0x80, flags: carryFlag},
		{desc: "sets zero flag", reg: &cpu.b, arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.rrc(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_rr(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc         string
		reg          *uint8
		arg          uint8
		want         uint8
		initialFlags Flag
		flags        Flag
	}{
		{desc: "rotates right", reg: &cpu.a, arg: 0x02, want: 0x01},
		{desc: "adds carry bit", reg: &cpu.a, arg: 0x02, want: 0x81, initialFlags: carryFlag},
		{desc: "sets carry flag", reg: &cpu.a, arg: 1, want: 0, flags: carryFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			*tC.reg = tC.arg
			cpu.rr(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_sla(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "shifts left", reg: &cpu.a, arg: 0x01, want: 0x02},
		{desc: "sets flags", reg: &cpu.a, arg: 0x80, want: 0, flags: carryFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.sla(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_sra(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "shifts right", reg: &cpu.a, arg: 0x22, want: 0x11},
		{desc: "preserves the MSb", reg: &cpu.a, arg: 0x82, want: 0xC1},
		{desc: "sets flags", reg: &cpu.a, arg: 1, want: 0, flags: carryFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.sra(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_srl(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "shifts right", reg: &cpu.a, arg: 0x88, want: 0x44},
		{desc: "clears the MSb", reg: &cpu.a, arg: 0x81, want: 0x40, flags: carryFlag},
		{desc: "sets flags", reg: &cpu.a, arg: 1, want: 0, flags: carryFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.srl(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_swap(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "swaps the nibbles", reg: &cpu.c, arg: 0xAB, want: 0xBA},
		{desc: "sets zero", reg: &cpu.b, arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.swap(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_addToA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "adds to register A", a: 0, arg: 0x0F, want: 0x0F},
		{desc: "sets half carry", a: 0x0F, arg: 0x0F, want: 0x1E, flags: halfCarryFlag},
		{desc: "sets carry", a: 0xFF, arg: 0x02, want: 1, flags: carryFlag | halfCarryFlag},
		{desc: "sets zero", a: 0xFF, arg: 0x01, want: 0, flags: zeroFlag | carryFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.addToA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_adcToA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		carry bool
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "adds to register A", a: 0, arg: 0x02, want: 0x02},
		{desc: "adds the carry flag", carry: true, a: 0, arg: 0x02, want: 0x03},
		{desc: "half carries through the carry bit", carry: true, a: 0x0E, arg: 0x01, want: 0x10, flags: halfCarryFlag},
		{desc: "sets carry", a: 0xFF, arg: 0x02, want: 1, flags: carryFlag | halfCarryFlag},
		{desc: "sets zero", a: 0xFF, arg: 0x01, want: 0, flags: zeroFlag | carryFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			if tC.carry {
				cpu.setFlag(carryFlag)
			}
			cpu.a = tC.a
			cpu.adcToA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_addToHL(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		hl    uint16
		arg   uint16
		want  uint16
		flags Flag
	}{
		{desc: "adds to HL", hl: 0, arg: 0x0F, want: 0x0F},
		{desc: "sets half carry if bit 11 carries", hl: 0x0FFF, arg: 0x01, want: 0x1000, flags: halfCarryFlag},
		{desc: "sets carry", hl: 0xFFFF, arg: 0x02, want: 1, flags: carryFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.setHL(tC.hl)
			cpu.addToHL(tC.arg)
			assert.Equal(t, tC.want, cpu.getHL())
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_addSignedToSP(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc   string
		sp     uint16
		offset int8
		want   uint16
		flags  Flag
	}{
		{desc: "adds a positive offset", sp: 0xC000, offset: 0x10, want: 0xC010},
		{desc: "adds a negative offset", sp: 0xC000, offset: -1, want: 0xBFFF},
		{desc: "carries off the low byte", sp: 0xC0F8, offset: 0x10, want: 0xC108, flags: carryFlag},
		{desc: "half carries off bit 3", sp: 0xC00F, offset: 0x01, want: 0xC010, flags: halfCarryFlag},
		{desc: "negative offset sets both carries", sp: 0xC001, offset: -1, want: 0xC000, flags: carryFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(zeroFlag | subFlag)
			cpu.sp = tC.sp
			got := cpu.addSignedToSP(tC.offset)
			assert.Equal(t, tC.want, got)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_subFromA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "subtracts from A", a: 0x03, arg: 0x01, want: 0x02, flags: subFlag},
		{desc: "sets carry", a: 0, arg: 0x01, want: 0xFF, flags: subFlag | carryFlag | halfCarryFlag},
		{desc: "sets half carry", a: 0x10, arg: 0x01, want: 0x0F, flags: subFlag | halfCarryFlag},
		{desc: "sets zero", a: 0x01, arg: 0x01, want: 0, flags: subFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.subFromA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_sbcFromA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		carry bool
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "subtracts from A", a: 0x03, arg: 0x01, want: 0x02, flags: subFlag},
		{desc: "uses carry value", carry: true, a: 0x03, arg: 0x01, want: 0x01, flags: subFlag},
		{desc: "borrows through the carry bit", carry: true, a: 0x10, arg: 0x0F, want: 0, flags: subFlag | zeroFlag | halfCarryFlag},
		{desc: "sets carry", a: 0, arg: 0x01, want: 0xFF, flags: subFlag | carryFlag | halfCarryFlag},
		{desc: "sets zero", a: 0x01, arg: 0x01, want: 0, flags: subFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			if tC.carry {
				cpu.setFlag(carryFlag)
			}
			cpu.a = tC.a
			cpu.sbcFromA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_andA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "does bitwise and with A", a: 0x0F, arg: 0x44, want: 0x04, flags: halfCarryFlag},
		{desc: "sets zero flag", a: 0x0F, arg: 0x40, want: 0, flags: zeroFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.andA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_orA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "does bitwise or with A", a: 0x40, arg: 0x04, want: 0x44},
		{desc: "sets zero flag", a: 0, arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.orA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_xorA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "does bitwise xor with A", a: 0x0F, arg: 0x03, want: 0x0C},
		{desc: "sets zero flag", a: 0xFF, arg: 0xFF, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.xorA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_compareA(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		flags Flag
	}{
		{desc: "sets zero flag (a == n)", a: 0x0F, arg: 0x0F, flags: subFlag | zeroFlag},
		{desc: "sets carry flag (a < n)", a: 0x00, arg: 0x01, flags: subFlag | halfCarryFlag | carryFlag},
		{desc: "sets half carry flag", a: 0x10, arg: 0x01, flags: subFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			before := cpu.a
			cpu.compareA(tC.arg)
			assert.Equal(t, before, cpu.a, "A must not change")
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_daa(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc         string
		initialFlags Flag
		a            uint8
		want         uint8
		flags        Flag
	}{
		{desc: "sets zero flag", a: 0, want: 0, flags: zeroFlag},
		{desc: "(add) adds 0x06", a: 0x7D, want: 0x83},
		{desc: "(add) adds 0x60", a: 0xA1, want: 0x01, flags: carryFlag},
		{desc: "(add) adds 0x66", a: 0xAA, want: 0x10, flags: carryFlag},
		{desc: "(sub+half) removes 0x06", initialFlags: subFlag | halfCarryFlag, a: 0x83, want: 0x7D, flags: subFlag},
		{desc: "(sub+carry) removes 0x60", initialFlags: subFlag | carryFlag, a: 0xA1, want: 0x41, flags: subFlag | carryFlag},
		{desc: "(sub+carry+half) removes 0x66", initialFlags: subFlag | carryFlag | halfCarryFlag, a: 0x10, want: 0xAA, flags: subFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			cpu.a = tC.a
			cpu.daa()
			assert.Equal(t, tC.want, cpu.a)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestCPU_bitTest(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu, mmu.Interrupts())

	testCases := []struct {
		desc    string
		initial Flag
		idx     uint8
		arg     uint8
		flags   Flag
	}{
		{desc: "sets zero flag", idx: 0, arg: 0xF0, flags: zeroFlag | halfCarryFlag},
		{desc: "resets zero flag", initial: zeroFlag, idx: 7, arg: 0x80, flags: halfCarryFlag},
		{desc: "keeps the carry flag", initial: carryFlag, idx: 1, arg: 0x02, flags: halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initial)
			cpu.bitTest(tC.idx, tC.arg)
			assert.Equalf(t, uint8(tC.flags), cpu.f, "flags don't match")
		})
	}
}

func TestBitOpcodesOnHL(t *testing.T) {
	t.Run("SET 0,(HL) writes through memory", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.setHL(0xC123)
		mmu.Write(0xC123, 0xF0)

		cycles := opcode0xCBC6(cpu)

		assert.Equal(t, uint8(0xF1), mmu.Read(0xC123))
		assert.Equal(t, 16, cycles)
	})

	t.Run("RES 7,(HL) writes through memory", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.setHL(0xC123)
		mmu.Write(0xC123, 0x80)

		cycles := opcode0xCBBE(cpu)

		assert.Equal(t, uint8(0x00), mmu.Read(0xC123))
		assert.Equal(t, 16, cycles)
	})

	t.Run("BIT 6,(HL) only reads", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.setHL(0xC123)
		cpu.f = 0
		mmu.Write(0xC123, 0x40)

		cycles := opcode0xCB76(cpu)

		assert.Equal(t, uint8(0x40), mmu.Read(0xC123))
		assert.Equal(t, uint8(halfCarryFlag), cpu.f)
		assert.Equal(t, 12, cycles)
	})
}

func TestCallRetInstructions(t *testing.T) {
	t.Run("CALL pushes return address and jumps", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC000
		cpu.sp = 0xFFFE

		// CALL 0x1234 is CD 34 12
		mmu.Write(0xC000, 0xCD)
		mmu.Write(0xC001, 0x34)
		mmu.Write(0xC002, 0x12)

		cpu.pc++
		cycles := opcode0xCD(cpu)

		assert.Equal(t, uint16(0x1234), cpu.pc)
		assert.Equal(t, uint16(0xFFFC), cpu.sp)
		assert.Equal(t, uint8(0x03), mmu.Read(0xFFFC)) // low byte of return address
		assert.Equal(t, uint8(0xC0), mmu.Read(0xFFFD)) // high byte of return address
		assert.Equal(t, 24, cycles)
	})

	t.Run("RET pops address and returns", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.sp = 0xFFFC
		mmu.Write(0xFFFC, 0x00)
		mmu.Write(0xFFFD, 0x20)

		cpu.pc = 0x1500
		cpu.pc++
		cycles := opcode0xC9(cpu)

		assert.Equal(t, uint16(0x2000), cpu.pc)
		assert.Equal(t, uint16(0xFFFE), cpu.sp)
		assert.Equal(t, 16, cycles)
	})

	t.Run("CALL NZ taken when zero clear", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC000
		cpu.sp = 0xFFFE
		cpu.f = 0

		mmu.Write(0xC000, 0xC4)
		mmu.Write(0xC001, 0x78)
		mmu.Write(0xC002, 0x56)

		cpu.pc++
		cycles := opcode0xC4(cpu)

		assert.Equal(t, uint16(0x5678), cpu.pc)
		assert.Equal(t, uint16(0xFFFC), cpu.sp)
		assert.Equal(t, 24, cycles)
	})

	t.Run("CALL NZ skipped when zero set", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC000
		cpu.sp = 0xFFFE
		cpu.f = uint8(zeroFlag)

		mmu.Write(0xC000, 0xC4)
		mmu.Write(0xC001, 0x78)
		mmu.Write(0xC002, 0x56)

		cpu.pc++
		cycles := opcode0xC4(cpu)

		// operand consumed, nothing pushed
		assert.Equal(t, uint16(0xC003), cpu.pc)
		assert.Equal(t, uint16(0xFFFE), cpu.sp)
		assert.Equal(t, 12, cycles)
	})

	t.Run("RET Z skipped when zero clear", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		cpu.sp = 0xFFFC
		cpu.f = 0

		cycles := opcode0xC8(cpu)

		assert.Equal(t, uint16(0xC001), cpu.pc)
		assert.Equal(t, uint16(0xFFFC), cpu.sp)
		assert.Equal(t, 8, cycles)
	})

	t.Run("RST 28 jumps to the fixed vector", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		cpu.sp = 0xFFFE

		cycles := opcode0xEF(cpu)

		assert.Equal(t, uint16(0x0028), cpu.pc)
		assert.Equal(t, uint16(0xFFFC), cpu.sp)
		assert.Equal(t, uint8(0x01), mmu.Read(0xFFFC))
		assert.Equal(t, uint8(0xC0), mmu.Read(0xFFFD))
		assert.Equal(t, 16, cycles)
	})

	t.Run("full CALL/RET cycle", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC100
		cpu.sp = 0xFFFE

		// CALL 0xC200 at 0xC100, RET at 0xC200
		mmu.Write(0xC100, 0xCD)
		mmu.Write(0xC101, 0x00)
		mmu.Write(0xC102, 0xC2)
		mmu.Write(0xC200, 0xC9)

		cpu.pc++
		opcode0xCD(cpu)
		assert.Equal(t, uint16(0xC200), cpu.pc)
		assert.Equal(t, uint16(0xFFFC), cpu.sp)

		cpu.pc++
		opcode0xC9(cpu)
		assert.Equal(t, uint16(0xC103), cpu.pc)
		assert.Equal(t, uint16(0xFFFE), cpu.sp)
	})
}

func TestJRInstructions(t *testing.T) {
	t.Run("JR forward", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		// PC points at the operand, the opcode byte is already consumed
		cpu.pc = 0xC000
		mmu.Write(0xC000, 0x05)

		cycles := opcode0x18(cpu)

		assert.Equal(t, uint16(0xC006), cpu.pc)
		assert.Equal(t, 12, cycles)
	})

	t.Run("JR backward", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC010
		mmu.Write(0xC010, 0xFB) // -5

		cycles := opcode0x18(cpu)

		assert.Equal(t, uint16(0xC00C), cpu.pc)
		assert.Equal(t, 12, cycles)
	})

	t.Run("JR -2 loops onto itself", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		mmu.Write(0xC001, 0xFE) // -2, back to the JR opcode byte

		cycles := opcode0x18(cpu)

		assert.Equal(t, uint16(0xC000), cpu.pc)
		assert.Equal(t, 12, cycles)
	})

	t.Run("JR NZ skipped when zero set", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC000
		cpu.f = uint8(zeroFlag)
		mmu.Write(0xC000, 0x0A)

		cycles := opcode0x20(cpu)

		assert.Equal(t, uint16(0xC001), cpu.pc)
		assert.Equal(t, 8, cycles)
	})

	t.Run("JR NZ taken when zero clear", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC000
		cpu.f = 0
		mmu.Write(0xC000, 0x0A)

		cycles := opcode0x20(cpu)

		assert.Equal(t, uint16(0xC00B), cpu.pc)
		assert.Equal(t, 12, cycles)
	})
}

func TestJPInstructions(t *testing.T) {
	t.Run("JP jumps to the immediate address", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		mmu.Write(0xC001, 0x00)
		mmu.Write(0xC002, 0xC2)

		cycles := opcode0xC3(cpu)

		assert.Equal(t, uint16(0xC200), cpu.pc)
		assert.Equal(t, 16, cycles)
	})

	t.Run("JP NC skipped when carry set", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		cpu.f = uint8(carryFlag)
		mmu.Write(0xC001, 0x00)
		mmu.Write(0xC002, 0xC2)

		cycles := opcode0xD2(cpu)

		assert.Equal(t, uint16(0xC003), cpu.pc)
		assert.Equal(t, 12, cycles)
	})

	t.Run("JP (HL) uses HL directly", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.setHL(0xC400)
		cycles := opcode0xE9(cpu)

		assert.Equal(t, uint16(0xC400), cpu.pc)
		assert.Equal(t, 4, cycles)
	})
}

func TestLoadStoreOpcodes(t *testing.T) {
	t.Run("LD (HL+),A post-increments", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.a = 0x42
		cpu.setHL(0xC0FF)

		cycles := opcode0x22(cpu)

		assert.Equal(t, uint8(0x42), mmu.Read(0xC0FF))
		assert.Equal(t, uint16(0xC100), cpu.getHL())
		assert.Equal(t, 8, cycles)
	})

	t.Run("LD A,(HL-) post-decrements", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.setHL(0xC100)
		mmu.Write(0xC100, 0x99)

		cycles := opcode0x3A(cpu)

		assert.Equal(t, uint8(0x99), cpu.a)
		assert.Equal(t, uint16(0xC0FF), cpu.getHL())
		assert.Equal(t, 8, cycles)
	})

	t.Run("LD (nn),SP stores both bytes", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		cpu.sp = 0xBEEF
		mmu.Write(0xC001, 0x00)
		mmu.Write(0xC002, 0xD0)

		cycles := opcode0x08(cpu)

		assert.Equal(t, uint8(0xEF), mmu.Read(0xD000))
		assert.Equal(t, uint8(0xBE), mmu.Read(0xD001))
		assert.Equal(t, 20, cycles)
	})

	t.Run("LDH (n),A writes high memory", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		cpu.a = 0x5A
		mmu.Write(0xC001, 0x80) // 0xFF80, first HRAM byte

		cycles := opcode0xE0(cpu)

		assert.Equal(t, uint8(0x5A), mmu.Read(0xFF80))
		assert.Equal(t, 12, cycles)
	})

	t.Run("POP AF masks the low flag bits", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.sp = 0xFFF0
		mmu.Write(0xFFF0, 0xFF) // F byte, low nibble must vanish
		mmu.Write(0xFFF1, 0x12) // A byte

		cycles := opcode0xF1(cpu)

		assert.Equal(t, uint16(0x12F0), cpu.getAF())
		assert.Equal(t, 12, cycles)
	})

	t.Run("LD HL,SP+e keeps SP intact", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.pc = 0xC001
		cpu.sp = 0xFFF8
		mmu.Write(0xC001, 0x02)

		cycles := opcode0xF8(cpu)

		assert.Equal(t, uint16(0xFFFA), cpu.getHL())
		assert.Equal(t, uint16(0xFFF8), cpu.sp)
		assert.Equal(t, 12, cycles)
	})
}

func TestMiscOpcodes(t *testing.T) {
	t.Run("CPL inverts A", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.a = 0x35
		cpu.f = uint8(zeroFlag | carryFlag)

		opcode0x2F(cpu)

		assert.Equal(t, uint8(0xCA), cpu.a)
		assert.Equal(t, uint8(zeroFlag|subFlag|halfCarryFlag|carryFlag), cpu.f)
	})

	t.Run("SCF sets carry and clears N/H", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.f = uint8(zeroFlag | subFlag | halfCarryFlag)

		opcode0x37(cpu)

		assert.Equal(t, uint8(zeroFlag|carryFlag), cpu.f)
	})

	t.Run("CCF toggles carry", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.f = uint8(carryFlag)
		opcode0x3F(cpu)
		assert.Equal(t, uint8(0), cpu.f)

		opcode0x3F(cpu)
		assert.Equal(t, uint8(carryFlag), cpu.f)
	})

	t.Run("RLCA always clears zero", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu, mmu.Interrupts())

		cpu.a = 0
		cpu.f = 0

		opcode0x07(cpu)

		assert.Equal(t, uint8(0), cpu.a)
		assert.Equal(t, uint8(0), cpu.f)
	})
}
