package itch_test

import (
	"github.com/marketfeeds/itch-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Version", func() {
	It("renders the documented protocol strings", func() {
		Expect(itch.V41.String()).To(Equal("4.1"))
		Expect(itch.V50.String()).To(Equal("5.0"))
	})
})

var _ = Describe("Side", func() {
	It("decodes the wire bytes", func() {
		Expect(itch.Side('B')).To(Equal(itch.Buy))
		Expect(itch.Side('S')).To(Equal(itch.Sell))
	})
	It("stringifies known sides", func() {
		Expect(itch.Buy.String()).To(Equal("Buy"))
		Expect(itch.Sell.String()).To(Equal("Sell"))
	})
})

var _ = Describe("package constants", func() {
	It("exposes the wildcard ticker and the fixed-point price scale", func() {
		Expect(itch.EveryTicker).To(Equal("*"))
		Expect(itch.FixedPriceScale).To(Equal(10000))
	})
})
