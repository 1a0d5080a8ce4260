package ec2

// AvailabilityZone is one zone usable for resource placement.
type AvailabilityZone struct {
	Name     string
	ZoneID   string
	ZoneType string
	Region   string
	State    string
}

// Subnet holds the subset of subnet metadata the auditor needs.
type Subnet struct {
	SubnetID         string
	VPCID            string
	AvailabilityZone string
	CIDR             string
}
