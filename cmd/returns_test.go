package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nihasbabu/gst-modules/internal/config"
)

func TestExplicitJobSplitsLargeTier(t *testing.T) {
	p := config.DefaultProfile()

	job := explicitJob(p, config.KindGSTR1, []string{"GSTR1_042024.json", " 27AAA_062024_B2B.zip ", "odd-name.json"})
	assert.Equal(t, config.KindGSTR1, job.Kind)
	assert.Equal(t, []string{"GSTR1_042024.json", "odd-name.json"}, job.Files)
	assert.Equal(t, []string{"27AAA_062024_B2B.zip"}, job.Large)

	sales := explicitJob(p, config.KindSales, []string{"27AAA_062024_B2B.zip"})
	assert.Equal(t, []string{"27AAA_062024_B2B.zip"}, sales.Files, "only GSTR-1 has a large tier")
	assert.Empty(t, sales.Large)
}

func TestAppProfile(t *testing.T) {
	one := &app{profiles: map[string]*config.Profile{"27AAA": {GSTIN: "27AAA"}}}
	p, err := one.profile("")
	assert.NoError(t, err)
	assert.Equal(t, "27AAA", p.GSTIN)

	_, err = one.profile("29BBB")
	assert.Error(t, err)

	two := &app{profiles: map[string]*config.Profile{"A": {GSTIN: "A"}, "B": {GSTIN: "B"}}}
	_, err = two.profile("")
	assert.Error(t, err)
}
