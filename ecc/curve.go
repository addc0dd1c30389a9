// Package ecc implements the L5 elliptic-curve system named in spec §4.9:
// short-Weierstrass curves y^2 = x^3 - 3x + b over Z/pZ, affine point
// arithmetic, key generation, Diffie-Hellman-style shared secrets, and an
// ElGamal-style sign/verify scheme (not ECDSA — see Sign/Verify doc
// comments).
package ecc

import (
	"github.com/libtom/tomcrypt/mpi"
	"github.com/libtom/tomcrypt/tcerr"
)

// radix64Alphabet mirrors dh's decoder: same libtommath mp_read_radix(...,
// 64) digit order ('0'-'9' then 'A'-'Z' then 'a'-'z' then '+' '/'), needed
// again here because the curve table is encoded the same way in
// original_source/ecc.c.
const radix64Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz+/"

var radix64Value [256]int8

func init() {
	for i := range radix64Value {
		radix64Value[i] = -1
	}
	for i := 0; i < len(radix64Alphabet); i++ {
		radix64Value[radix64Alphabet[i]] = int8(i)
	}
}

func mustRadix64(s string) *mpi.Int {
	z := mpi.New()
	sixtyFour := mpi.NewInt64(64)
	for i := 0; i < len(s); i++ {
		v := radix64Value[s[i]]
		if v < 0 {
			panic("ecc: invalid radix-64 digit in built-in curve table")
		}
		mpi.Mul(z, z, sixtyFour)
		mpi.Add(z, z, mpi.NewInt64(int64(v)))
	}
	return z
}

// Curve is one row of the fixed NIST-style curve table (spec §4.9): a field
// size, the curve's b coefficient (a = -3 is fixed, per the source's
// comment "curve y^2 = x^3 - 3x + b"), the group order, and a base point.
// Table contents are copied verbatim from original_source/ecc.c's `sets[]`.
type Curve struct {
	Name      string
	SizeBytes int
	Prime     *mpi.Int
	B         *mpi.Int
	Order     *mpi.Int
	Gx, Gy    *mpi.Int
}

// Curves is the fixed table named in spec §4.9, smallest to largest.
var Curves []Curve

func addCurve(name string, sizeBytes int, prime, b, order, gx, gy string) {
	Curves = append(Curves, Curve{
		Name:      name,
		SizeBytes: sizeBytes,
		Prime:     mustRadix64(prime),
		B:         mustRadix64(b),
		Order:     mustRadix64(order),
		Gx:        mustRadix64(gx),
		Gy:        mustRadix64(gy),
	})
}

func init() {
	addCurve("ECC-160", 20,
		"G00000000000000000000000007",
		"1oUV2vOaSlWbxr6",
		"G0000000000004sCQUtDxaqDUN5",
		"jpqOf1BHus6Yd/pyhyVpP",
		"D/wykuuIFfr+vPyx7kQEPu8MixO")
	addCurve("ECC-192", 24,
		"/////////////////////l//////////",
		"P2456UMSWESFf+chSYGmIVwutkp1Hhcn",
		"////////////////cTxuDXHhoR6qqYWn",
		"68se3h0maFPylo3hGw680FJ/2ls2/n0I",
		"1nahbV/8sdXZ417jQoJDrNFvTw4UUKWH")
	addCurve("ECC-224", 28,
		"400000000000000000000000000000000000BV",
		"21HkWGL2CxJIp",
		"4000000000000000000Kxnixk9t8MLzMiV264/",
		"jpqOf1BHus6Yd/pyhyVpP",
		"3FCtyo2yHA5SFjkCGbYxbOvNeChwS+j6wSIwck")
	addCurve("ECC-256", 32,
		"F////y000010000000000000000////////////////",
		"5h6DTYgEfFdi+kzLNQOXhnb7GQmp5EmzZlEF3udqc1B",
		"F////y00000//////////+yvlgjfnUUXFEvoiByOoLH",
		"6iNqVBXB497+BpcvMEaGF9t0ts1BUipeFIXEKNOcCAM",
		"4/ZGkB+6d+RZkVhIdmFdXOhpZDNQp5UpiksG6Wtlr7r")
	addCurve("ECC-384", 48,
		"//////////////////////////////////////////x/////00000000003/"+
			"////",
		"ip4lf+8+v+IOZWLhu/Wj6HWTd6x+WK4I0nG8Zr0JXrh6LZcDYYxHdIg5oEtJ"+
			"x2hl",
		"////////////////////////////////nsDDWVGtBTzO6WsoIB2dUkpi6MhC"+
			"nIbp",
		"geVA8hwB1JUEiSSUyo2jT6uTEsABfvkOMVT1u89KAZXL0l9TlrKfR3fKNZXo"+
			"TWgt",
		"DXVUIfOcB6zTdfY/afBSAVZq7RqecXHywTen4xNmkC0AOB7E7Nw1dNf37NoG"+
			"wWvV")
	addCurve("ECC-521", 65,
		"V///////////////////////////////////////////////////////////"+
			"///////////////////////////",
		"56LFhbXZXoQ7vAQ8Q2sXK3kejfoMvcp5VEuj8cHZl49uLOPEL7iVfDx5bB0l"+
			"JknlmSrSz+8FImqyUz57zHhK3y0",
		"V//////////////////////////////////////////+b66XuE/BvPhVym1I"+
			"FS9fT0xjScuYPn7hhjljnwHE6G9",
		"CQ5ZWQt10JfpPu+osOZbRH2d6I1EGK/jI7uAAzWQqqzkg5BNdVlvrae/Xt19"+
			"wB/gDupIBF1XMf2c/b+VZ72vRrc",
		"HWvAMfucZl015oANxGiVHlPcFL4ILURH6WNhxqN9pvcB9VkSfbUz2P0nL2v0"+
			"J+j1s4rF726edB2G8Y+b7QVqMPG")
}

// selectCurve picks the smallest table entry whose size is >= sizeBytes
// (spec §4.9 "Make key: pick smallest table entry >= requested size").
func selectCurve(sizeBytes int) (*Curve, error) {
	for i := range Curves {
		if Curves[i].SizeBytes >= sizeBytes {
			return &Curves[i], nil
		}
	}
	return nil, tcerr.New(tcerr.ErrInvalidKeySize, "no ecc curve table entry covers a requested size of %d bytes", sizeBytes)
}

// SelfTest validates every table entry per spec §8: the base point lies on
// the curve, and (order+1)*G == G (order*G is the identity).
func SelfTest() error {
	for _, c := range Curves {
		g := Point{X: mpi.Copy(c.Gx), Y: mpi.Copy(c.Gy)}
		if !g.onCurve(&c) {
			return tcerr.New(tcerr.ErrFailTestVector, "ecc table entry %s: base point is not on the curve", c.Name)
		}
		orderPlus1 := mpi.New()
		mpi.Add(orderPlus1, c.Order, mpi.NewInt64(1))
		gg, err := mulMod(orderPlus1, &g, &c)
		if err != nil {
			return err
		}
		if gg.X.Cmp(g.X) != 0 || gg.Y.Cmp(g.Y) != 0 {
			return tcerr.New(tcerr.ErrFailTestVector, "ecc table entry %s: (order+1)*G != G", c.Name)
		}
	}
	return nil
}
