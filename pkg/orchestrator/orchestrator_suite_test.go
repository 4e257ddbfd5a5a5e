package orchestrator_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/klog/v2"
)

// TestOrchestratorScenarios is the entry point for the Ginkgo scenario suite
func TestOrchestratorScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orchestrator Scenario Suite")
}

var _ = BeforeSuite(func() {
	klog.SetOutput(GinkgoWriter)
	klog.LogToStderr(false)
})
