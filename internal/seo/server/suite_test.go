package server_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestServerAcceptance(t *testing.T) {
	RegisterFailHandler(Fail)

	suiteConfig, reporterConfig := GinkgoConfiguration()
	suiteConfig.Timeout = 2 * time.Minute
	reporterConfig.Succinct = true

	RunSpecs(t, "SEO Service Acceptance Suite", suiteConfig, reporterConfig)
}
