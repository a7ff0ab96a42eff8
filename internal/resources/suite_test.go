//go:build integration

// Integration tests applying the embedded manifests to a real API server.
//
// Run these tests with:
//
//	KUBEBUILDER_ASSETS="$(setup-envtest use -p path)" go test -v -tags=integration ./internal/resources/...
package resources_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/imamik/argo-rollouts-operator/internal/k8sclient"
	"github.com/imamik/argo-rollouts-operator/internal/manifests"
	"github.com/imamik/argo-rollouts-operator/internal/resources"
)

const (
	testNamespace = "argo-test"
	testAppName   = "argo-rollouts"
)

var (
	cfg       *rest.Config
	k8sClient client.Client
	testEnv   *envtest.Environment
	ctx       context.Context
	cancel    context.CancelFunc
)

func TestResourcesIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Resources Integration Suite")
}

var _ = BeforeSuite(func() {
	logf.SetLogger(zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true)))
	ctx, cancel = context.WithCancel(context.Background())

	By("bootstrapping test environment with real kube-apiserver and etcd")
	testEnv = &envtest.Environment{}

	var err error
	cfg, err = testEnv.Start()
	Expect(err).NotTo(HaveOccurred())
	Expect(cfg).NotTo(BeNil())

	k8sClient, err = client.New(cfg, client.Options{Scheme: scheme.Scheme})
	Expect(err).NotTo(HaveOccurred())

	Expect(k8sClient.Create(ctx, &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: testNamespace}})).To(Succeed())
})

var _ = AfterSuite(func() {
	cancel()
	By("tearing down the test environment")
	Expect(testEnv.Stop()).To(Succeed())
})

func embeddedResources() manifests.Source {
	return manifests.Source{FS: manifests.Embedded(), Namespace: testNamespace, AppName: testAppName}
}

var _ = Describe("Applier", func() {
	var applier *resources.Applier

	BeforeEach(func() {
		cluster, err := k8sclient.NewForConfig(cfg, "argo-rollouts-operator-test")
		Expect(err).NotTo(HaveOccurred())
		applier = resources.NewApplier(cluster)
	})

	It("applies every embedded resource and is idempotent", func() {
		for range 2 {
			seq, err := embeddedResources().Resources(ctx)
			Expect(err).NotTo(HaveOccurred())

			count, err := applier.Apply(ctx, seq)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(13))
		}

		binding := &rbacv1.ClusterRoleBinding{}
		Expect(k8sClient.Get(ctx, types.NamespacedName{Name: "argo-rollouts-argo-test"}, binding)).To(Succeed())
		Expect(binding.Subjects).To(HaveLen(1))
		Expect(binding.Subjects[0].Namespace).To(Equal(testNamespace))
		Expect(binding.Labels).To(HaveKeyWithValue("app.kubernetes.io/managed-by", testAppName))

		cm := &corev1.ConfigMap{}
		Expect(k8sClient.Get(ctx, types.NamespacedName{Namespace: testNamespace, Name: "argo-rollouts-config"}, cm)).To(Succeed())
		Expect(cm.ManagedFields).NotTo(BeEmpty())
		Expect(cm.ManagedFields[0].Manager).To(Equal("argo-rollouts-operator-test"))
	})

	It("deletes every embedded resource and tolerates missing ones", func() {
		for range 2 {
			seq, err := embeddedResources().Resources(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = applier.Delete(ctx, seq)
			Expect(err).NotTo(HaveOccurred())
		}

		Eventually(func() bool {
			err := k8sClient.Get(ctx, types.NamespacedName{Name: "argo-rollouts-argo-test"}, &rbacv1.ClusterRole{})
			return apierrors.IsNotFound(err)
		}, 10*time.Second, 100*time.Millisecond).Should(BeTrue())

		err := k8sClient.Get(ctx, types.NamespacedName{Namespace: testNamespace, Name: "argo-rollouts-config"}, &corev1.ConfigMap{})
		Expect(apierrors.IsNotFound(err)).To(BeTrue())
	})
})
