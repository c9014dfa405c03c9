package chaincfg

// The retarget window sizes below follow Bitcoin's difficulty adjustment
// interval conventions: 2016 blocks (two weeks at the 10-minute target) on
// mainnet and testnet, 144 blocks on regtest so tests don't need to mine
// thousands of blocks to exercise a full period.
const (
	mainNetPeriod    = 2016
	mainNetThreshold = 1815 // 90%

	testNetPeriod    = 2016
	testNetThreshold = 1512 // 75%

	regTestPeriod    = 144
	regTestThreshold = 108 // 75%
)

// Well-known deployment bit assignments, shared by all the networks below.
// CheckVBitsHeights checks one Params at a time: within a network, two
// deployments on the same bit must have disjoint windows.
const (
	// BitTestDummy is reserved for exercising the state machine itself;
	// it is never wired to an actual consensus rule change.
	BitTestDummy uint8 = 27

	// BitCSV is used by the relative-lock-time soft fork.
	BitCSV uint8 = 0

	// BitSegwit is used by the segregated witness soft fork.
	BitSegwit uint8 = 1

	// BitTaproot is used by the Taproot soft fork.
	BitTaproot uint8 = 2
)

// MainNetParams is the deployment configuration for the production network.
var MainNetParams = Params{
	Name:      "mainnet",
	Period:    mainNetPeriod,
	Threshold: mainNetThreshold,
	Deployments: []DeploymentParams{
		{
			Name:          "testdummy",
			Bit:           BitTestDummy,
			StartHeight:   NeverActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "csv",
			Bit:           BitCSV,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "segwit",
			Bit:           BitSegwit,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:                "taproot",
			Bit:                 BitTaproot,
			StartHeight:         709632,
			TimeoutHeight:       863999,
			MinActivationHeight: 709632,
		},
	},
}

// TestNetParams is the deployment configuration for the public test network.
var TestNetParams = Params{
	Name:      "testnet",
	Period:    testNetPeriod,
	Threshold: testNetThreshold,
	Deployments: []DeploymentParams{
		{
			Name:          "testdummy",
			Bit:           BitTestDummy,
			StartHeight:   1512 * testNetPeriod,
			TimeoutHeight: 1512*testNetPeriod + testNetPeriod,
		},
		{
			Name:          "csv",
			Bit:           BitCSV,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "segwit",
			Bit:           BitSegwit,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "taproot",
			Bit:           BitTaproot,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
	},
}

// RegressionNetParams is the deployment configuration for a local regtest
// network, where the short period lets tests exercise activation without
// mining thousands of blocks.
var RegressionNetParams = Params{
	Name:      "regtest",
	Period:    regTestPeriod,
	Threshold: regTestThreshold,
	Deployments: []DeploymentParams{
		{
			Name:          "testdummy",
			Bit:           BitTestDummy,
			StartHeight:   0,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "csv",
			Bit:           BitCSV,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "segwit",
			Bit:           BitSegwit,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
		{
			Name:          "taproot",
			Bit:           BitTaproot,
			StartHeight:   AlwaysActiveHeight,
			TimeoutHeight: NoTimeout,
		},
	},
}
