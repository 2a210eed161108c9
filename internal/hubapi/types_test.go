package hubapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryKinds_Table(t *testing.T) {
	require.Len(t, RepositoryKinds, 16)
	for i, info := range RepositoryKinds {
		assert.Equal(t, RepositoryKind(i), info.Kind, "table must be ordered by value")
		got, ok := ParseRepositoryKind(info.Name)
		assert.True(t, ok, "ParseRepositoryKind(%q)", info.Name)
		assert.Equal(t, info.Kind, got)
	}

	assert.Equal(t, "helm", KindHelm.Name())
	assert.Equal(t, "tekton-pipeline", KindTektonPipeline.Name())
	assert.Equal(t, "kyverno", KindKyverno.String())
	assert.Equal(t, "Gatekeeper policies", KindGatekeeper.Label())
}

func TestRepositoryKind_Unknown(t *testing.T) {
	k := RepositoryKind(99)
	assert.False(t, k.Valid())
	assert.Equal(t, "kind-99", k.Name())
	assert.Equal(t, "Unknown", k.Label())

	_, ok := ParseRepositoryKind("rpm")
	assert.False(t, ok)
}

func TestFacetID_Unmarshal(t *testing.T) {
	var opts []FacetOption
	err := json.Unmarshal([]byte(`[{"id":3,"name":"OLM"},{"id":"bitnami","name":"Bitnami"}]`), &opts)
	require.NoError(t, err)
	assert.Equal(t, FacetID("3"), opts[0].ID)
	assert.Equal(t, FacetID("bitnami"), opts[1].ID)

	var bad FacetOption
	assert.Error(t, json.Unmarshal([]byte(`{"id":{"x":1}}`), &bad))
}

func TestPackage_Location(t *testing.T) {
	p := Package{
		NormalizedName: "redis",
		Version:        "1.2.3",
		Repository:     Repository{Name: "bitnami", Kind: KindHelm},
	}
	loc := p.Location()
	assert.Equal(t, "helm", loc.Kind)
	assert.Equal(t, "bitnami", loc.Repository)
	assert.Equal(t, "redis", loc.NormalizedName)
	assert.Equal(t, "1.2.3", loc.Version)
}

func TestPackage_Title(t *testing.T) {
	assert.Equal(t, "Redis", Package{Name: "redis", DisplayName: "Redis"}.Title())
	assert.Equal(t, "redis", Package{Name: "redis"}.Title())
}

func TestContainerImage_DisplayName(t *testing.T) {
	assert.Equal(t, "app", ContainerImage{Name: "app", Image: "repo/app:1"}.DisplayName())
	assert.Equal(t, "repo/app:1", ContainerImage{Image: "repo/app:1"}.DisplayName())
}

func TestPackageDetail_GatekeeperSamples(t *testing.T) {
	var d PackageDetail
	err := json.Unmarshal([]byte(`{"data":{"samples":{"b-sample":{},"a-sample":{}}}}`), &d)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-sample", "b-sample"}, d.GatekeeperSamples())

	assert.Nil(t, (&PackageDetail{}).GatekeeperSamples())
}

func TestProfile_FullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", (&Profile{Alias: "jd", FirstName: "Jane", LastName: "Doe"}).FullName())
	assert.Equal(t, "Doe", (&Profile{Alias: "jd", LastName: "Doe"}).FullName())
	assert.Equal(t, "jd", (&Profile{Alias: "jd"}).FullName())
}
