package gs

import "testing"

func TestWriteRegPrimAndRGBAQ(t *testing.T) {
	g := New()
	g.WriteReg(0x00, 7)
	g.WriteReg(0x01, 0x11223344)
	if g.Prim != 7 {
		t.Errorf("prim = %d, want 7", g.Prim)
	}
	if g.RGBAQ != 0x11223344 {
		t.Errorf("rgbaq = %#x, want 11223344", g.RGBAQ)
	}
}

func TestWritePrivCSRClearsVsintOnAck(t *testing.T) {
	g := New()
	g.WritePriv(0x1000, 0x8)
	if g.Priv.CSR != 0 {
		t.Errorf("CSR vsint-ack write should clear bit 3, got %#x", g.Priv.CSR)
	}
}

func TestHWREGTransferWritesPSMCT32(t *testing.T) {
	g := New()
	g.WriteReg(0x50, uint64(0)|(uint64(1)<<48)) // bitbltbuf: dest_base=0, dest_width=1, psmct32
	g.WriteReg(0x51, 0)                          // trxpos: dest (0,0)
	g.WriteReg(0x52, 2|(1<<32))                  // trxreg: width=2, height=1
	g.WriteReg(0x53, uint64(TRXHostLocal))       // trxdir, resets data_written

	g.WriteHWReg(0x2222222211111111)

	if g.TrxDir != TRXNone {
		t.Errorf("2-pixel transfer into a 2-wide buffer should complete, trxdir=%d", g.TrxDir)
	}
}

func TestHWREGIgnoredWhenNotHostLocal(t *testing.T) {
	g := New()
	before := g.VRAM[0]
	g.WriteHWReg(0xFFFFFFFFFFFFFFFF)
	if g.VRAM[0] != before {
		t.Errorf("HWREG write outside HostLocal transfer should not touch VRAM")
	}
}
