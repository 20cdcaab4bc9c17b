package runtimeconfig_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/source-dashboard/internal/runtimeconfig"
)

var _ = Describe("Store", func() {
	var store *runtimeconfig.Store

	BeforeEach(func() {
		store = runtimeconfig.NewStore()
	})

	Context("before any resolution", func() {
		It("should fail every accessor with ErrNotLoaded", func() {
			_, err := store.PrimaryEndpoint()
			Expect(errors.Is(err, runtimeconfig.ErrNotLoaded)).To(BeTrue())

			_, err = store.SecondaryEndpoint()
			Expect(errors.Is(err, runtimeconfig.ErrNotLoaded)).To(BeTrue())

			_, err = store.EnvironmentLabel()
			Expect(errors.Is(err, runtimeconfig.ErrNotLoaded)).To(BeTrue())

			_, err = store.Snapshot()
			Expect(errors.Is(err, runtimeconfig.ErrNotLoaded)).To(BeTrue())
		})

		It("should name the field in the message", func() {
			_, err := store.SecondaryEndpoint()
			Expect(err.Error()).To(Equal("app config not loaded yet (API2_BASE_URL)"))
		})

		It("should report not loaded", func() {
			Expect(store.Loaded()).To(BeFalse())
			Expect(store.Version()).To(BeZero())
		})
	})
})

var _ = Describe("Configuration", func() {
	It("should normalize both endpoints", func() {
		cfg := runtimeconfig.Configuration{
			PrimaryEndpoint:   "https://x/",
			SecondaryEndpoint: "https://y",
			EnvironmentLabel:  "test",
		}.Normalized()

		Expect(cfg.PrimaryEndpoint).To(Equal("https://x"))
		Expect(cfg.SecondaryEndpoint).To(Equal("https://y"))
		Expect(cfg.EnvironmentLabel).To(Equal("test"))
	})
})
