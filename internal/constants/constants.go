package constants

// EventsRolePolicyName is the canonical managed policy attached to the
// CloudWatch Events role that triggers the scheduled ElectricEye task.
const EventsRolePolicyName = "service-role/AmazonEC2ContainerServiceEventsRole"

// DefaultEventsRolePolicyARN is the canonical ARN in the standard partition.
// Sovereign partitions (aws-us-gov, aws-cn) carry a different partition
// segment, so this ARN does not resolve there.
const DefaultEventsRolePolicyARN = "arn:aws:iam::aws:policy/" + EventsRolePolicyName

// ASFFSchemaVersion is the AWS Security Finding Format schema version all
// findings are emitted under.
const ASFFSchemaVersion = "2018-10-08"

// ProductName tags every finding's ProductFields.
const ProductName = "ElectricEye"

// UnusedFunctionWindowDays is the lookback window for the unused-function
// check. Functions with no invocations and no modification inside the window
// fail the check.
const UnusedFunctionWindowDays = 30

// SecurityHubBatchSize is the BatchImportFindings request limit.
const SecurityHubBatchSize = 100
